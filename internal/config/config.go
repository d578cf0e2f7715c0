package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	MarketData MarketDataConfig `yaml:"market_data"`
	Trading    TradingConfig    `yaml:"trading"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Advisor    AdvisorConfig    `yaml:"advisor"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type MarketDataConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RetryCount     int    `yaml:"retry_count"`
}

type TradingConfig struct {
	InitialFunding   float64 `yaml:"initial_funding"`
	ExecuteRetries   int     `yaml:"execute_retries"`
	QuoteConcurrency int     `yaml:"quote_concurrency"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type AdvisorConfig struct {
	Enabled        bool   `yaml:"enabled"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/papertrade.db"
	}
	if cfg.MarketData.TimeoutSeconds <= 0 {
		cfg.MarketData.TimeoutSeconds = 10
	}
	if cfg.MarketData.RetryCount <= 0 {
		cfg.MarketData.RetryCount = 2
	}
	if cfg.Trading.InitialFunding == 0 {
		cfg.Trading.InitialFunding = 100000
	}
	if cfg.Trading.ExecuteRetries <= 0 {
		cfg.Trading.ExecuteRetries = 3
	}
	if cfg.Trading.QuoteConcurrency <= 0 {
		cfg.Trading.QuoteConcurrency = 5
	}
	if cfg.Advisor.Model == "" {
		cfg.Advisor.Model = "deepseek-chat"
	}
	if cfg.Advisor.BaseURL == "" {
		cfg.Advisor.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.Advisor.TimeoutSeconds == 0 {
		cfg.Advisor.TimeoutSeconds = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("market_data.base_url is required")
	}
	if c.Trading.InitialFunding < 0 {
		return fmt.Errorf("trading.initial_funding must not be negative")
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Advisor.Enabled && c.Advisor.APIKey == "" {
		return fmt.Errorf("advisor.api_key is required when advisor is enabled")
	}
	return nil
}

func (c *Config) InitialFunding() decimal.Decimal {
	return decimal.NewFromFloat(c.Trading.InitialFunding)
}

func (c *Config) MarketDataTimeout() time.Duration {
	return time.Duration(c.MarketData.TimeoutSeconds) * time.Second
}

func (c *Config) AdvisorTimeout() time.Duration {
	return time.Duration(c.Advisor.TimeoutSeconds) * time.Second
}
