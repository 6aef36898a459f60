package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Polymarket PolymarketConfig `mapstructure:"polymarket"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Scan       ScanConfig       `mapstructure:"scan"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// PolymarketConfig holds Polymarket API configuration
type PolymarketConfig struct {
	GammaAPIURL    string        `mapstructure:"gamma_api_url"`
	CLOBAPIURL     string        `mapstructure:"clob_api_url"`
	DataAPIURL     string        `mapstructure:"data_api_url"`
	PageLimit      int           `mapstructure:"page_limit"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// MonitorConfig holds position monitor behavior configuration
type MonitorConfig struct {
	PollInterval        time.Duration `mapstructure:"poll_interval"`
	AlertThresholdCents float64       `mapstructure:"alert_threshold_cents"`
	UpDownCheckEvery    int           `mapstructure:"updown_check_every"`
	UpDownLeadHours     float64       `mapstructure:"updown_lead_hours"`
}

// ScanConfig holds low-risk market scan configuration
type ScanConfig struct {
	MaxRisk   float64 `mapstructure:"max_risk"`
	TopN      int     `mapstructure:"top_n"`
	MinVolume float64 `mapstructure:"min_volume"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	DBPath       string `mapstructure:"db_path"`
	MaxAlertRows int    `mapstructure:"max_alert_rows"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("LP_WATCH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("polymarket.gamma_api_url", "https://gamma-api.polymarket.com")
	v.SetDefault("polymarket.clob_api_url", "https://clob.polymarket.com")
	v.SetDefault("polymarket.data_api_url", "https://data-api.polymarket.com")
	v.SetDefault("polymarket.page_limit", 100)
	v.SetDefault("polymarket.timeout", "30s")
	v.SetDefault("polymarket.max_retries", 3)
	v.SetDefault("polymarket.retry_delay_base", "1s")

	v.SetDefault("monitor.poll_interval", "30s")
	v.SetDefault("monitor.alert_threshold_cents", 1.0)
	v.SetDefault("monitor.updown_check_every", 10)
	v.SetDefault("monitor.updown_lead_hours", 1.5)

	v.SetDefault("scan.max_risk", 35.0)
	v.SetDefault("scan.top_n", 25)
	v.SetDefault("scan.min_volume", 25000.0)

	v.SetDefault("storage.db_path", "./data/lp-watch.db")
	v.SetDefault("storage.max_alert_rows", 1000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Polymarket.GammaAPIURL == "" {
		return fmt.Errorf("polymarket.gamma_api_url is required")
	}
	if c.Polymarket.CLOBAPIURL == "" {
		return fmt.Errorf("polymarket.clob_api_url is required")
	}
	if c.Polymarket.DataAPIURL == "" {
		return fmt.Errorf("polymarket.data_api_url is required")
	}
	if c.Polymarket.PageLimit < 1 || c.Polymarket.PageLimit > 500 {
		return fmt.Errorf("polymarket.page_limit must be between 1 and 500")
	}
	if c.Polymarket.Timeout < time.Second {
		return fmt.Errorf("polymarket.timeout must be at least 1 second")
	}
	if c.Polymarket.MaxRetries < 1 {
		return fmt.Errorf("polymarket.max_retries must be at least 1")
	}

	if c.Monitor.PollInterval < 5*time.Second {
		return fmt.Errorf("monitor.poll_interval must be at least 5 seconds")
	}
	if c.Monitor.AlertThresholdCents <= 0 || c.Monitor.AlertThresholdCents > 100 {
		return fmt.Errorf("monitor.alert_threshold_cents must be between 0 and 100")
	}
	if c.Monitor.UpDownCheckEvery < 1 {
		return fmt.Errorf("monitor.updown_check_every must be at least 1")
	}
	if c.Monitor.UpDownLeadHours <= 0 {
		return fmt.Errorf("monitor.updown_lead_hours must be positive")
	}

	if c.Scan.MaxRisk < 0 || c.Scan.MaxRisk > 100 {
		return fmt.Errorf("scan.max_risk must be between 0 and 100")
	}
	if c.Scan.TopN < 1 {
		return fmt.Errorf("scan.top_n must be at least 1")
	}
	if c.Scan.MinVolume < 0 {
		return fmt.Errorf("scan.min_volume must not be negative")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.MaxAlertRows < 1 {
		return fmt.Errorf("storage.max_alert_rows must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
