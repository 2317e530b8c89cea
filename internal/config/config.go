package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Symbols   SymbolsConfig   `yaml:"symbols"`
	Source    SourceConfig    `yaml:"source"`
	Collector CollectorConfig `yaml:"collector"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Squeeze   SqueezeConfig   `yaml:"squeeze"`
	Market    MarketConfig    `yaml:"market"`
	Notify    NotifyConfig    `yaml:"notify"`
	Provider  ProviderConfig  `yaml:"provider"`
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
}

// SymbolsConfig locates the ticker universe and the ignore-list
type SymbolsConfig struct {
	TickerDir  string `yaml:"ticker_dir"`  // directory of exchange CSV exports with a Symbol column
	IgnoreFile string `yaml:"ignore_file"` // one word per line
}

// SourceConfig holds the comment page settings
type SourceConfig struct {
	Mode      string        `yaml:"mode"` // browser or http
	URL       string        `yaml:"url"`
	Selector  string        `yaml:"selector"`
	Headless  bool          `yaml:"headless"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// CollectorConfig holds the collection loop settings
type CollectorConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	MaxRetries    int           `yaml:"max_retries"`
	ProbeAddr     string        `yaml:"probe_addr"`
}

// SentimentConfig holds aggregation and signal settings
type SentimentConfig struct {
	TopN           int    `yaml:"top_n"`
	ReportN        int    `yaml:"report_n"`
	EmaPeriod      int    `yaml:"ema_period"`
	StatusSchedule string `yaml:"status_schedule"` // cron expression
}

// SqueezeConfig holds screening settings
type SqueezeConfig struct {
	Workers     int           `yaml:"workers"`
	Timeout     time.Duration `yaml:"timeout"`
	HistoryDays int           `yaml:"history_days"`
}

// MarketConfig holds exchange session settings
type MarketConfig struct {
	Timezone string `yaml:"timezone"`
	Open     string `yaml:"open"`  // HH:MM
	Close    string `yaml:"close"` // HH:MM
}

// NotifyConfig holds SMS-over-email settings
type NotifyConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Email           string        `yaml:"email"`
	Password        string        `yaml:"password"`
	SMTPHost        string        `yaml:"smtp_host"`
	SMTPPort        int           `yaml:"smtp_port"`
	IMAPHost        string        `yaml:"imap_host"`
	IMAPPort        int           `yaml:"imap_port"`
	Mailbox         string        `yaml:"mailbox"`
	PhoneNumber     string        `yaml:"phone_number"`
	Carrier         string        `yaml:"carrier"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	MessageDelay    time.Duration `yaml:"message_delay"`
	DeleteProcessed bool          `yaml:"delete_processed"`
}

// ProviderConfig holds market data provider settings
type ProviderConfig struct {
	RateLimit int `yaml:"rate_limit"` // requests per minute
}

// LoggingConfig selects log level and encoder
type LoggingConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

// ServerConfig holds the status API settings
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// envOverrides are read from WSB_* environment variables.
// Empty values leave the file configuration untouched.
type envOverrides struct {
	Email       string `envconfig:"EMAIL"`
	Password    string `envconfig:"EMAIL_PASSWORD"`
	PhoneNumber string `envconfig:"PHONE_NUMBER"`
	Carrier     string `envconfig:"PHONE_CARRIER"`
	DataDir     string `envconfig:"DATA_DIR"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	LogEnv      string `envconfig:"ENV"`
	Listen      string `envconfig:"LISTEN"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "Data",
		Symbols: SymbolsConfig{
			TickerDir:  "Stock_Tickers",
			IgnoreFile: "Data/words_to_ignore.txt",
		},
		Source: SourceConfig{
			Mode:      "browser",
			URL:       "https://stocks.comment.ai/",
			Selector:  "#comment-area",
			Headless:  true,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			Timeout:   30 * time.Second,
		},
		Collector: CollectorConfig{
			PollInterval:  2 * time.Second,
			RetryInterval: 5 * time.Second,
			MaxRetries:    12,
			ProbeAddr:     "1.1.1.1:53",
		},
		Sentiment: SentimentConfig{
			TopN:           25,
			ReportN:        10,
			EmaPeriod:      10,
			StatusSchedule: "@every 1h",
		},
		Squeeze: SqueezeConfig{
			Workers:     25,
			Timeout:     5 * time.Minute,
			HistoryDays: 30,
		},
		Market: MarketConfig{
			Timezone: "America/New_York",
			Open:     "09:30",
			Close:    "16:00",
		},
		Notify: NotifyConfig{
			Enabled:         false,
			SMTPHost:        "smtp.gmail.com",
			SMTPPort:        465,
			IMAPHost:        "imap.gmail.com",
			IMAPPort:        993,
			Mailbox:         "INBOX",
			PollInterval:    30 * time.Second,
			MessageDelay:    time.Second,
			DeleteProcessed: true,
		},
		Provider: ProviderConfig{
			RateLimit: 120,
		},
		Logging: LoggingConfig{
			Level: "info",
			Env:   "development",
		},
	}
}

// Load loads configuration from a YAML file, then applies .env and WSB_*
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("WSB", &env); err != nil {
		return fmt.Errorf("processing environment: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Notify.Email, env.Email)
	set(&c.Notify.Password, env.Password)
	set(&c.Notify.PhoneNumber, env.PhoneNumber)
	set(&c.Notify.Carrier, env.Carrier)
	set(&c.DataDir, env.DataDir)
	set(&c.Logging.Level, env.LogLevel)
	set(&c.Logging.Env, env.LogEnv)
	set(&c.Server.Listen, env.Listen)
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Source.Mode != "browser" && c.Source.Mode != "http" {
		return fmt.Errorf("source.mode must be browser or http, got %q", c.Source.Mode)
	}
	if c.Source.URL == "" || c.Source.Selector == "" {
		return fmt.Errorf("source.url and source.selector are required")
	}
	if c.Collector.PollInterval <= 0 || c.Collector.RetryInterval <= 0 {
		return fmt.Errorf("collector intervals must be positive")
	}
	if c.Collector.MaxRetries < 1 {
		return fmt.Errorf("collector.max_retries must be at least 1")
	}
	if c.Sentiment.TopN < 1 || c.Sentiment.ReportN < 1 {
		return fmt.Errorf("sentiment.top_n and sentiment.report_n must be at least 1")
	}
	if c.Sentiment.EmaPeriod < 1 {
		return fmt.Errorf("sentiment.ema_period must be at least 1")
	}
	if c.Squeeze.Workers < 1 {
		return fmt.Errorf("squeeze.workers must be at least 1")
	}
	if c.Squeeze.HistoryDays < 11 {
		return fmt.Errorf("squeeze.history_days must cover at least 11 sessions")
	}
	if c.Squeeze.Timeout <= 0 {
		return fmt.Errorf("squeeze.timeout must be positive")
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("market.timezone: %w", err)
	}
	for _, hm := range []string{c.Market.Open, c.Market.Close} {
		if _, err := time.Parse("15:04", hm); err != nil {
			return fmt.Errorf("market session time %q: %w", hm, err)
		}
	}
	if c.Notify.Enabled {
		if c.Notify.Email == "" || c.Notify.Password == "" {
			return fmt.Errorf("notify requires WSB_EMAIL and WSB_EMAIL_PASSWORD")
		}
		if c.Notify.PhoneNumber == "" || c.Notify.Carrier == "" {
			return fmt.Errorf("notify requires a phone number and carrier")
		}
	}
	return nil
}
