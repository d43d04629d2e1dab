package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// SeedHolding is a portfolio position loaded at startup.
type SeedHolding struct {
	Ticker   string  `yaml:"ticker"`
	Shares   float64 `yaml:"shares"`
	AvgPrice float64 `yaml:"avg_price"`
	Date     string  `yaml:"date"`
}

// Config holds all application configuration.
type Config struct {
	Provider struct {
		Name       string        `yaml:"name"` // yahoo or mock
		Proxy      string        `yaml:"proxy"`
		Timeout    time.Duration `yaml:"timeout"`
		Retries    uint64        `yaml:"retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"provider"`
	Paper struct {
		StartCash float64 `yaml:"start_cash"`
	} `yaml:"paper"`
	Portfolio struct {
		Seed []SeedHolding `yaml:"seed"`
	} `yaml:"portfolio"`
	Watchlist []string `yaml:"watchlist"`
	Schedule  struct {
		PortfolioCron string `yaml:"portfolio_cron"`
		PaperCron     string `yaml:"paper_cron"`
		WatchlistCron string `yaml:"watchlist_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"` // empty keeps the journal in memory
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Path returns CONFIG_PATH or DefaultPath.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads .env, then the YAML file at path, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

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
	if v := os.Getenv("INVESTAUR_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Provider.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PAPER_START_CASH"); v != "" {
		cash, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("PAPER_START_CASH: %w", err)
		}
		cfg.Paper.StartCash = cash
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Provider.Name == "" {
		c.Provider.Name = "yahoo"
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 15 * time.Second
	}
	if c.Provider.Retries == 0 {
		c.Provider.Retries = 2
	}
	if c.Provider.RetryDelay == 0 {
		c.Provider.RetryDelay = 500 * time.Millisecond
	}
	if c.Paper.StartCash == 0 {
		c.Paper.StartCash = 100000
	}
	if c.Schedule.PortfolioCron == "" {
		c.Schedule.PortfolioCron = "0 * * * * *"
	}
	if c.Schedule.PaperCron == "" {
		c.Schedule.PaperCron = "30 * * * * *"
	}
	if c.Schedule.WatchlistCron == "" {
		c.Schedule.WatchlistCron = "0 0 22 * * 1-5"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks field consistency.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "yahoo", "mock":
	default:
		return fmt.Errorf("provider.name %q: want yahoo or mock", c.Provider.Name)
	}
	if c.Paper.StartCash <= 0 {
		return errors.New("paper.start_cash must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	for i, h := range c.Portfolio.Seed {
		if h.Ticker == "" || h.Shares <= 0 || h.AvgPrice < 0 {
			return fmt.Errorf("portfolio.seed[%d]: ticker, positive shares and non-negative avg_price are required", i)
		}
	}
	return nil
}
