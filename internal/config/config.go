package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Client    ClientConfig
	Polling   PollingConfig
	Worker    WorkerConfig
	AutoSave  AutoSaveConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	DB        DatabaseConfig
	Logging   LoggingConfig
}

type ClientConfig struct {
	BaseURL       string
	DashboardPath string // page carrying the csrfmiddlewaretoken field
	CSRFToken     string // skips token discovery when set
	Locale        string
	DateRangeDays int
	ExportDir     string
	ChartsOut     string // HTML chart page rewritten after each stats refresh; empty disables
	HTTPTimeout   time.Duration
}

type PollingConfig struct {
	AlertsInterval time.Duration
	StatsInterval  time.Duration
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type AutoSaveConfig struct {
	Debounce time.Duration
	Interval time.Duration
}

type ServerConfig struct {
	Host string
	Port int
}

type RateLimitConfig struct {
	RPS int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
	File  string // the terminal UI logs here instead of stdout
}

func Load() (*Config, error) {
	cfg := &Config{
		Client: ClientConfig{
			BaseURL:       getEnv("DASHBOARD_URL", "http://localhost:8000"),
			DashboardPath: getEnv("DASHBOARD_PAGE", "/dashboard/"),
			CSRFToken:     getEnv("DASHBOARD_CSRF_TOKEN", ""),
			Locale:        getEnv("DASHBOARD_LOCALE", "es"),
			DateRangeDays: getEnvInt("DASHBOARD_DATE_RANGE", 30),
			ExportDir:     getEnv("DASHBOARD_EXPORT_DIR", "."),
			ChartsOut:     getEnv("DASHBOARD_CHARTS_OUT", ""),
			HTTPTimeout:   getEnvDuration("DASHBOARD_HTTP_TIMEOUT", 0),
		},
		Polling: PollingConfig{
			AlertsInterval: getEnvDuration("ALERTS_POLL_INTERVAL", 10*time.Second),
			StatsInterval:  getEnvDuration("STATS_POLL_INTERVAL", 30*time.Second),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 1),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		AutoSave: AutoSaveConfig{
			Debounce: getEnvDuration("AUTOSAVE_DEBOUNCE", 5*time.Second),
			Interval: getEnvDuration("AUTOSAVE_INTERVAL", 30*time.Second),
		},
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8000),
		},
		RateLimit: RateLimitConfig{
			RPS: getEnvInt("RATE_LIMIT_RPS", 20),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/surgery-dashboard.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "surgery-dash.log"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Client.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid dashboard url: %q", c.Client.BaseURL)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Polling.AlertsInterval < time.Second {
		return fmt.Errorf("alerts poll interval must be at least 1 second")
	}
	if c.Polling.StatsInterval < time.Second {
		return fmt.Errorf("stats poll interval must be at least 1 second")
	}

	if c.Client.DateRangeDays < 1 {
		return fmt.Errorf("invalid date range: %d days", c.Client.DateRangeDays)
	}
	if c.Client.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout cannot be negative")
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if c.RateLimit.RPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per second")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
