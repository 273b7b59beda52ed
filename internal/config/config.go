package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Exchange struct {
		APIKey          string `yaml:"api_key"`
		SecretKey       string `yaml:"secret_key"`
		BaseAsset       string `yaml:"base_asset"`
		QuoteAsset      string `yaml:"quote_asset"`
		IntervalMinutes int    `yaml:"interval_minutes"`
		CandleCount     int    `yaml:"candle_count"`
	} `yaml:"exchange"`
	Advisory struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"advisory"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		CycleCron string `yaml:"cycle_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Risk struct {
		MinOrderNotional  float64 `yaml:"min_order_notional"`
		MinReservePercent float64 `yaml:"min_reserve_percent"`
	} `yaml:"risk"`
	Paper struct {
		WalletFile    string  `yaml:"wallet_file"`
		StartingQuote float64 `yaml:"starting_quote"`
	} `yaml:"paper"`
	Timeouts struct {
		Read  time.Duration `yaml:"read"`
		Order time.Duration `yaml:"order"`
	} `yaml:"timeouts"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine; env and defaults carry.
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
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		cfg.Exchange.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		cfg.Exchange.SecretKey = v
	}
	if v := os.Getenv("ADVISORY_BASE_URL"); v != "" {
		cfg.Advisory.BaseURL = v
	}
	if v := os.Getenv("ADVISORY_API_KEY"); v != "" {
		cfg.Advisory.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CYCLE_CRON"); v != "" {
		cfg.Schedule.CycleCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PAPER_STARTING_QUOTE"); v != "" {
		if q, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Paper.StartingQuote = q
		}
	}

	// Defaults
	if cfg.Exchange.BaseAsset == "" {
		cfg.Exchange.BaseAsset = "BTC"
	}
	if cfg.Exchange.QuoteAsset == "" {
		cfg.Exchange.QuoteAsset = "USDT"
	}
	if cfg.Exchange.IntervalMinutes == 0 {
		cfg.Exchange.IntervalMinutes = 60
	}
	if cfg.Exchange.CandleCount == 0 {
		cfg.Exchange.CandleCount = 300
	}
	if cfg.Advisory.Timeout == 0 {
		cfg.Advisory.Timeout = 30 * time.Second
	}
	if cfg.Schedule.CycleCron == "" {
		// Hourly, five minutes past, so the hour candle is closed.
		cfg.Schedule.CycleCron = "0 5 * * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trendsentry.db"
	}
	if cfg.Risk.MinOrderNotional == 0 {
		cfg.Risk.MinOrderNotional = 10
	}
	if cfg.Risk.MinReservePercent == 0 {
		cfg.Risk.MinReservePercent = 5
	}
	if cfg.Paper.WalletFile == "" {
		cfg.Paper.WalletFile = "data/paper_wallet.json"
	}
	if cfg.Paper.StartingQuote == 0 {
		cfg.Paper.StartingQuote = 10000
	}
	if cfg.Timeouts.Read == 0 {
		cfg.Timeouts.Read = 10 * time.Second
	}
	if cfg.Timeouts.Order == 0 {
		cfg.Timeouts.Order = 15 * time.Second
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks the fields that have no safe fallback.
func (c *Config) Validate() error {
	if c.Exchange.IntervalMinutes <= 0 {
		return fmt.Errorf("exchange.interval_minutes must be positive")
	}
	if c.Exchange.CandleCount < 50 {
		return fmt.Errorf("exchange.candle_count must be at least 50")
	}
	if c.Risk.MinReservePercent < 0 || c.Risk.MinReservePercent >= 100 {
		return fmt.Errorf("risk.min_reserve_percent must be in [0, 100)")
	}
	if (c.Exchange.APIKey == "") != (c.Exchange.SecretKey == "") {
		return fmt.Errorf("exchange credentials must be set together or not at all")
	}
	return nil
}

// PaperMode reports whether the bot should simulate orders locally.
func (c *Config) PaperMode() bool {
	return c.Exchange.APIKey == ""
}
