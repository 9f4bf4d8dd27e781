package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/pipeline"
)

var errNoRenderableData = errors.New("no renderable data")

type checkReport struct {
	Symbol      string            `json:"symbol"`
	Source      string            `json:"source"`
	State       string            `json:"state"`
	Verdict     string            `json:"verdict"`
	Issues      []string          `json:"issues"`
	Diagnostics model.Diagnostics `json:"diagnostics"`
	Repair      model.RepairStats `json:"repair"`
	FastPeriod  int               `json:"fast_period"`
	SlowPeriod  int               `json:"slow_period"`
	Series      []seriesPoint     `json:"series,omitempty"`
}

type seriesPoint struct {
	model.Observation
	Fixed   bool    `json:"fixed"`
	FastEMA float64 `json:"fast_ema"`
	SlowEMA float64 `json:"slow_ema"`
}

func checkCmd(cfgPath *string) *cobra.Command {
	var (
		file       string
		withSeries bool
	)
	cmd := &cobra.Command{
		Use:   "check SYMBOL",
		Short: "Fetch one series, run the quality pipeline and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			var fetcher collector.Fetcher
			if file != "" {
				fetcher = &collector.FileFetcher{Path: file}
			} else {
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("config validation: %w", err)
				}
				fetcher = newFetcher(cfg)
			}

			symbol := strings.ToUpper(args[0])
			col := collector.NewCollector(fetcher, cfg.DataSource.LookbackDays, pipelineOptions(cfg), nil)
			snap, err := col.Collect(cmd.Context(), symbol)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(newCheckReport(snap, withSeries)); err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			if snap.Result.State == pipeline.StateNoData {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: no renderable data, nothing to chart\n", symbol)
				return fmt.Errorf("%s: %w", symbol, errNoRenderableData)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read observations from a local JSON file instead of the configured source")
	cmd.Flags().BoolVar(&withSeries, "series", false, "include repaired points and the EMA overlay")
	return cmd
}

func newCheckReport(snap *collector.Snapshot, withSeries bool) checkReport {
	res := snap.Result
	report := checkReport{
		Symbol:      snap.Symbol,
		Source:      snap.Source,
		State:       string(res.State),
		Verdict:     string(res.Health.Verdict),
		Issues:      res.Health.Issues,
		Diagnostics: res.Diagnostics,
		Repair:      res.Repair.Stats,
		FastPeriod:  res.Overlay.FastPeriod,
		SlowPeriod:  res.Overlay.SlowPeriod,
	}
	if report.Issues == nil {
		report.Issues = []string{}
	}
	if withSeries {
		for i, o := range res.Repair.Observations {
			report.Series = append(report.Series, seriesPoint{
				Observation: o,
				Fixed:       res.Repair.Fixed[i],
				FastEMA:     res.Overlay.Fast[i],
				SlowEMA:     res.Overlay.Slow[i],
			})
		}
	}
	return report
}
