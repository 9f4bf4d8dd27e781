// Package scheduler runs the periodic quality checks and answers chat commands.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/notifier"
	"PriceSentinel/internal/recorder"
	"PriceSentinel/internal/watch"
)

const (
	sendRetries  = 3
	historyLimit = 10
	// failureAlertEvery limits fetch failure alerts to the first and then every n-th consecutive failure.
	failureAlertEvery = 5
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron        *cron.Cron
	Collector   *collector.Collector
	Watch       *watch.Manager
	Notifier    notifier.Sender
	Recorder    recorder.Recorder
	Instruments []string
	Workers     int
	Ctx         context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, wm *watch.Manager, sender notifier.Sender, rec recorder.Recorder, instruments []string, workers int) *Scheduler {
	if workers <= 0 {
		workers = 1
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Collector:   col,
		Watch:       wm,
		Notifier:    sender,
		Recorder:    rec,
		Instruments: instruments,
		Workers:     workers,
		Ctx:         ctx,
		now:         time.Now,
	}
}

// RegisterAll registers the quality check and the digest.
func (s *Scheduler) RegisterAll(checkCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(checkCron, func() { s.CheckAll(s.Ctx) }); err != nil {
		return fmt.Errorf("register check task: %w", err)
	}
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("instruments", len(s.Instruments)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// CheckAll checks every configured instrument with at most Workers fetches in flight.
func (s *Scheduler) CheckAll(ctx context.Context) {
	runID := uuid.NewString()
	logger := log.With().Str("check_id", runID).Logger()
	logger.Info().Int("instruments", len(s.Instruments)).Msg("running quality check")
	start := s.now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for _, symbol := range s.Instruments {
		symbol := symbol
		g.Go(func() error {
			// Per-instrument failures are handled inside; only cancellation stops the batch.
			s.checkOne(gctx, symbol)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("quality check aborted")
	}
	logger.Info().Dur("elapsed", s.now().Sub(start)).Msg("quality check finished")
}

// checkOne runs one instrument and alerts on a verdict change. It returns the
// snapshot, or nil when the fetch failed.
func (s *Scheduler) checkOne(ctx context.Context, symbol string) *collector.Snapshot {
	snap, err := s.Collector.Collect(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.handleFetchFailure(symbol, err)
		return nil
	}

	if err := s.Recorder.RecordRun(runFromSnapshot(snap)); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("record run")
	}

	res := snap.Result
	tr := s.Watch.Observe(symbol, res.Health.Verdict, string(res.State), len(res.Health.Issues), snap.FetchedAt)
	if tr.Changed() {
		log.Info().Str("symbol", symbol).Str("from", tr.From).Str("to", tr.To).Msg("verdict changed")
		s.trySend(notifier.FormatTransition(tr, snap))
	}
	return snap
}

func (s *Scheduler) handleFetchFailure(symbol string, err error) {
	log.Error().Err(err).Str("symbol", symbol).Msg("collect series")
	if rerr := s.Recorder.RecordFetchFailure(&recorder.FetchFailure{
		Symbol: symbol,
		Source: s.Collector.Fetcher.Name(),
		Error:  err.Error(),
	}); rerr != nil {
		log.Error().Err(rerr).Str("symbol", symbol).Msg("record fetch failure")
	}
	n := s.Watch.ObserveFailure(symbol, err, s.now())
	if n == 1 || n%failureAlertEvery == 0 {
		s.trySend(notifier.FormatFetchFailure(symbol, err, n))
	}
}

func (s *Scheduler) digestTask() {
	log.Info().Msg("sending digest")
	s.trySend(notifier.FormatDigest(s.states(), s.now()))
}

func (s *Scheduler) states() map[string]watch.InstrumentState {
	states := make(map[string]watch.InstrumentState)
	for _, sym := range s.Instruments {
		states[sym] = watch.InstrumentState{}
	}
	for _, sym := range s.Watch.Symbols() {
		if st, ok := s.Watch.Get(sym); ok {
			states[sym] = st
		}
	}
	return states
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Telegram appends @botname to commands in group chats.
	name := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch name {
	case "/check":
		if arg == "" {
			return "Usage: /check SYMBOL"
		}
		snap := s.checkOne(s.Ctx, arg)
		if snap == nil {
			return fmt.Sprintf("Could not fetch %s, see logs.", arg)
		}
		return notifier.FormatQualityReport(snap)
	case "/status":
		return notifier.FormatStatus(s.states())
	case "/history":
		if arg == "" {
			return "Usage: /history SYMBOL"
		}
		runs, err := s.Recorder.RecentRuns(arg, historyLimit)
		if err != nil {
			log.Error().Err(err).Str("symbol", arg).Msg("load history")
			return fmt.Sprintf("Could not load history for %s.", arg)
		}
		return notifier.FormatHistory(arg, runs)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

func runFromSnapshot(snap *collector.Snapshot) *recorder.QualityRun {
	res := snap.Result
	d := res.Diagnostics
	stats := res.Repair.Stats
	run := &recorder.QualityRun{
		Timestamp:    snap.FetchedAt,
		Symbol:       snap.Symbol,
		Source:       snap.Source,
		State:        string(res.State),
		Verdict:      string(res.Health.Verdict),
		Trend:        string(d.Trend),
		RawCount:     stats.Raw,
		ValidCount:   d.Valid,
		NaNCount:     d.NaN,
		Inverted:     d.Inverted,
		NonPositive:  d.NonPositive,
		MissingDate:  d.MissingDate,
		FlatCount:    d.Flat,
		FixedCount:   stats.Fixed,
		DroppedCount: stats.Dropped,
		Repaired:     stats.Repaired,
		VariationPct: d.VariationPct,
		Issues:       res.Health.Issues,
	}
	if n := len(res.Repair.Observations); n > 0 {
		run.LastClose = res.Repair.Observations[n-1].Close
		run.FastEMA = res.Overlay.Fast[n-1]
		run.SlowEMA = res.Overlay.Slow[n-1]
	}
	return run
}
