package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/config"
	"PriceSentinel/internal/logging"
	"PriceSentinel/internal/pipeline"
	"PriceSentinel/internal/quality"
)

func newRootCmd() *cobra.Command {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}

	root := &cobra.Command{
		Use:           "pricesentinel",
		Short:         "Daily price series quality checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", cfgPath, "path to the YAML config file")

	root.AddCommand(runCmd(&cfgPath))
	root.AddCommand(checkCmd(&cfgPath))
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	return cfg, nil
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		FastPeriod: cfg.Overlay.FastPeriod,
		SlowPeriod: cfg.Overlay.SlowPeriod,
		Policy: &quality.Policy{
			VariationWarnPct:   cfg.Health.VariationWarnPct,
			PoorIssueThreshold: cfg.Health.PoorIssueThreshold,
		},
	}
}

// newFetcher builds the configured source behind the rate limiter and breaker.
func newFetcher(cfg *config.Config) collector.Fetcher {
	var f collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		f = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderFile:
		return &collector.FileFetcher{Dir: cfg.DataSource.Dir}
	default:
		f = collector.NewYahooFetcher(cfg.Proxy)
	}
	return collector.NewGuardedFetcher(f, cfg.DataSource.RatePerSecond, cfg.DataSource.Burst)
}
