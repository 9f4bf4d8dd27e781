package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported data source providers.
const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
	ProviderFile  = "file"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider      string  `yaml:"provider"`
		BaseURL       string  `yaml:"base_url"`
		APIKey        string  `yaml:"api_key"`
		Dir           string  `yaml:"dir"`
		LookbackDays  int     `yaml:"lookback_days"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
	} `yaml:"data_source"`
	Instruments []string `yaml:"instruments"`
	Overlay     struct {
		FastPeriod int `yaml:"fast_period"`
		SlowPeriod int `yaml:"slow_period"`
	} `yaml:"overlay"`
	Health struct {
		VariationWarnPct   float64 `yaml:"variation_warn_pct"`
		PoorIssueThreshold int     `yaml:"poor_issue_threshold"`
	} `yaml:"health"`
	Schedule struct {
		CheckCron  string `yaml:"check_cron"`
		DigestCron string `yaml:"digest_cron"`
		Workers    int    `yaml:"workers"`
	} `yaml:"schedule"`
	Watch struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"watch"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Zero is a meaningful health policy, so these defaults are set before
	// decoding and only replaced by keys present in the file.
	cfg.Health.VariationWarnPct = 0.5
	cfg.Health.PoorIssueThreshold = 2

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataSource.Dir = v
	}
	if v := os.Getenv("INSTRUMENTS"); v != "" {
		cfg.Instruments = splitList(v)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DataSource.LookbackDays = n
		}
	}
	if v := os.Getenv("CRON_CHECK"); v != "" {
		cfg.Schedule.CheckCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderYahoo
	}
	if cfg.DataSource.LookbackDays == 0 {
		cfg.DataSource.LookbackDays = 180
	}
	if cfg.DataSource.RatePerSecond == 0 {
		cfg.DataSource.RatePerSecond = 2
	}
	if cfg.DataSource.Burst == 0 {
		cfg.DataSource.Burst = 1
	}
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = []string{"SPX500"}
	}
	if cfg.Overlay.FastPeriod == 0 {
		cfg.Overlay.FastPeriod = 20
	}
	if cfg.Overlay.SlowPeriod == 0 {
		cfg.Overlay.SlowPeriod = 50
	}
	if cfg.Schedule.CheckCron == "" {
		cfg.Schedule.CheckCron = "0 30 22 * * 1-5"
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 8 * * 1"
	}
	if cfg.Schedule.Workers == 0 {
		cfg.Schedule.Workers = 4
	}
	if cfg.Watch.StateFile == "" {
		cfg.Watch.StateFile = "data/watch_state.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/price_sentinel.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for provider %q", ProviderREST)
		}
	case ProviderFile:
		if c.DataSource.Dir == "" {
			return fmt.Errorf("data_source.dir is required for provider %q", ProviderFile)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.LookbackDays <= 0 {
		return fmt.Errorf("data_source.lookback_days must be positive")
	}
	if c.DataSource.RatePerSecond < 0 {
		return fmt.Errorf("data_source.rate_per_second must not be negative")
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("instruments must not be empty")
	}
	if c.Overlay.FastPeriod <= 0 || c.Overlay.SlowPeriod <= 0 {
		return fmt.Errorf("overlay periods must be positive")
	}
	if c.Overlay.FastPeriod >= c.Overlay.SlowPeriod {
		return fmt.Errorf("overlay.fast_period must be below overlay.slow_period")
	}
	if c.Health.VariationWarnPct < 0 {
		return fmt.Errorf("health.variation_warn_pct must not be negative")
	}
	if c.Health.PoorIssueThreshold < 0 {
		return fmt.Errorf("health.poor_issue_threshold must not be negative")
	}
	if c.Schedule.Workers <= 0 {
		return fmt.Errorf("schedule.workers must be positive")
	}
	return nil
}

// ValidateNotifier checks the Telegram settings needed by the long-running service.
func (c *Config) ValidateNotifier() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
