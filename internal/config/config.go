package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Sources struct {
		OpenDataURL    string `yaml:"open_data_url"`
		BanRepURL      string `yaml:"banrep_url"`
		ScrapeURL      string `yaml:"scrape_url"`
		RatesAPIURL    string `yaml:"rates_api_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"sources"`
	Rates struct {
		Mode string `yaml:"mode"` // "api" or "csv"
		Base string `yaml:"base"`
	} `yaml:"rates"`
	Synthetic struct {
		Baseline float64 `yaml:"baseline"`
		Jitter   float64 `yaml:"jitter"`
		Seed     int64   `yaml:"seed"`
	} `yaml:"synthetic"`
	Cache struct {
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"cache"`
	Data struct {
		Dir          string `yaml:"dir"`
		SnapshotFile string `yaml:"snapshot_file"`
	} `yaml:"data"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		SampleCron  string `yaml:"sample_cron"`
	} `yaml:"schedule"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

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
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("OPEN_DATA_URL"); v != "" {
		cfg.Sources.OpenDataURL = v
	}
	if v := os.Getenv("BANREP_URL"); v != "" {
		cfg.Sources.BanRepURL = v
	}
	if v := os.Getenv("SCRAPE_URL"); v != "" {
		cfg.Sources.ScrapeURL = v
	}
	if v := os.Getenv("RATES_API_URL"); v != "" {
		cfg.Sources.RatesAPIURL = v
	}
	if v := os.Getenv("RATES_MODE"); v != "" {
		cfg.Rates.Mode = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("CACHE_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLMinutes = n
		}
	}
	if v := os.Getenv("SYNTHETIC_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Synthetic.Seed = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Sources.OpenDataURL == "" {
		cfg.Sources.OpenDataURL = "https://www.datos.gov.co/resource/32sa-8pi3.json"
	}
	if cfg.Sources.BanRepURL == "" {
		cfg.Sources.BanRepURL = "https://www.banrep.gov.co/estadisticas/trm"
	}
	if cfg.Sources.ScrapeURL == "" {
		cfg.Sources.ScrapeURL = "https://dolar-colombia.com/historico-trm"
	}
	if cfg.Sources.RatesAPIURL == "" {
		cfg.Sources.RatesAPIURL = "https://open.er-api.com/v6/latest"
	}
	if cfg.Sources.TimeoutSeconds == 0 {
		cfg.Sources.TimeoutSeconds = 30
	}
	if cfg.Rates.Mode == "" {
		cfg.Rates.Mode = "api"
	}
	if cfg.Rates.Base == "" {
		cfg.Rates.Base = "USD"
	}
	if cfg.Synthetic.Baseline == 0 {
		cfg.Synthetic.Baseline = 4000
	}
	if cfg.Synthetic.Jitter == 0 {
		cfg.Synthetic.Jitter = 100
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 60
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if cfg.Data.SnapshotFile == "" {
		cfg.Data.SnapshotFile = "exchange_rates.csv"
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 0 * * * *"
	}
	if cfg.Schedule.SampleCron == "" {
		cfg.Schedule.SampleCron = "0 30 0 * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Rates.Mode != "api" && c.Rates.Mode != "csv" {
		return fmt.Errorf("rates.mode must be \"api\" or \"csv\", got %q", c.Rates.Mode)
	}
	if c.Sources.TimeoutSeconds <= 0 {
		return fmt.Errorf("sources.timeout_seconds must be positive")
	}
	if c.Synthetic.Baseline <= 0 {
		return fmt.Errorf("synthetic.baseline must be positive")
	}
	if c.Synthetic.Jitter < 0 {
		return fmt.Errorf("synthetic.jitter must not be negative")
	}
	if c.Cache.TTLMinutes <= 0 {
		return fmt.Errorf("cache.ttl_minutes must be positive")
	}
	return nil
}

// SnapshotPath is the full path of the multi-currency snapshot file.
func (c *Config) SnapshotPath() string {
	return c.Data.Dir + string(os.PathSeparator) + c.Data.SnapshotFile
}
