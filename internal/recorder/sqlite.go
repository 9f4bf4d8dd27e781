package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quality_runs (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			source         TEXT,
			state          TEXT,
			verdict        TEXT,
			trend          TEXT,
			raw_count      INTEGER,
			valid_count    INTEGER,
			nan_count      INTEGER,
			inverted_count INTEGER,
			nonpos_count   INTEGER,
			missing_date   INTEGER,
			flat_count     INTEGER,
			fixed_count    INTEGER,
			dropped_count  INTEGER,
			repaired_count INTEGER,
			variation_pct  REAL,
			last_close     REAL,
			fast_ema       REAL,
			slow_ema       REAL,
			issues         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON quality_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS fetch_failures (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT,
			source    TEXT,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_ts ON fetch_failures(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores a run. Missing ID and Timestamp are filled in.
func (r *SQLiteRecorder) RecordRun(run *QualityRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO quality_runs
		(id, timestamp, symbol, source, state, verdict, trend,
		 raw_count, valid_count, nan_count, inverted_count, nonpos_count, missing_date, flat_count,
		 fixed_count, dropped_count, repaired_count,
		 variation_pct, last_close, fast_ema, slow_ema, issues)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Timestamp.UnixMilli(), run.Symbol, run.Source, run.State, run.Verdict, run.Trend,
		run.RawCount, run.ValidCount, run.NaNCount, run.Inverted, run.NonPositive, run.MissingDate, run.FlatCount,
		run.FixedCount, run.DroppedCount, run.Repaired,
		run.VariationPct, run.LastClose, run.FastEMA, run.SlowEMA, strings.Join(run.Issues, "\n"),
	)
	return err
}

func (r *SQLiteRecorder) RecordFetchFailure(evt *FetchFailure) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fetch_failures (timestamp, symbol, source, error) VALUES (?,?,?,?)`,
		time.Now().UnixMilli(), evt.Symbol, evt.Source, evt.Error,
	)
	return err
}

// RecentRuns returns the latest runs for symbol, newest first.
func (r *SQLiteRecorder) RecentRuns(symbol string, limit int) ([]QualityRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT
		id, timestamp, symbol, source, state, verdict, trend,
		raw_count, valid_count, nan_count, inverted_count, nonpos_count, missing_date, flat_count,
		fixed_count, dropped_count, repaired_count,
		variation_pct, last_close, fast_ema, slow_ema, issues
		FROM quality_runs WHERE symbol = ? ORDER BY timestamp DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []QualityRun
	for rows.Next() {
		var (
			run    QualityRun
			ts     int64
			issues string
		)
		if err := rows.Scan(
			&run.ID, &ts, &run.Symbol, &run.Source, &run.State, &run.Verdict, &run.Trend,
			&run.RawCount, &run.ValidCount, &run.NaNCount, &run.Inverted, &run.NonPositive, &run.MissingDate, &run.FlatCount,
			&run.FixedCount, &run.DroppedCount, &run.Repaired,
			&run.VariationPct, &run.LastClose, &run.FastEMA, &run.SlowEMA, &issues,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Timestamp = time.UnixMilli(ts)
		if issues != "" {
			run.Issues = strings.Split(issues, "\n")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
