package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// StoreConfig holds ledger storage and account settings.
type StoreConfig struct {
	DBPath          string  `yaml:"db_path"`
	StartingBalance float64 `yaml:"starting_balance"`
	Currency        string  `yaml:"currency"`
	Fee             float64 `yaml:"fee"`
}

// Duration parses YAML values like "30s" or "2m" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// PricesConfig holds market data source settings.
type PricesConfig struct {
	BaseURL        string   `yaml:"base_url"`
	Timeout        Duration `yaml:"timeout"`
	PriceCacheTTL  Duration `yaml:"price_cache_ttl"`
	MarketCacheTTL Duration `yaml:"market_cache_ttl"`
}

// OrdersConfig holds conditional order polling settings.
type OrdersConfig struct {
	CheckInterval Duration `yaml:"check_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Prices PricesConfig `yaml:"prices"`
	Orders OrdersConfig `yaml:"orders"`
	Log    LogConfig    `yaml:"log"`
}

// Load reads the optional YAML file at path, overlays environment
// variables on top, then fills defaults. An empty path skips the file;
// a missing file at a non-empty path is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.ListenAddr = getEnv("LISTEN_ADDR", cfg.Server.ListenAddr)
	cfg.Store.DBPath = getEnv("DB_PATH", cfg.Store.DBPath)
	cfg.Store.StartingBalance = getFloatEnv("STARTING_BALANCE", cfg.Store.StartingBalance)
	cfg.Store.Currency = getEnv("CURRENCY", cfg.Store.Currency)
	cfg.Store.Fee = getFloatEnv("TRADE_FEE", cfg.Store.Fee)
	cfg.Prices.BaseURL = getEnv("PRICE_API_URL", cfg.Prices.BaseURL)
	cfg.Prices.Timeout = getDurationEnv("PRICE_API_TIMEOUT", cfg.Prices.Timeout)
	cfg.Prices.PriceCacheTTL = getDurationEnv("PRICE_CACHE_TTL", cfg.Prices.PriceCacheTTL)
	cfg.Prices.MarketCacheTTL = getDurationEnv("MARKET_CACHE_TTL", cfg.Prices.MarketCacheTTL)
	cfg.Orders.CheckInterval = getDurationEnv("ORDER_CHECK_INTERVAL", cfg.Orders.CheckInterval)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Store.DBPath == "" {
		cfg.Store.DBPath = "data/papersim.db"
	}
	if cfg.Store.StartingBalance == 0 {
		cfg.Store.StartingBalance = 10000
	}
	if cfg.Store.Currency == "" {
		cfg.Store.Currency = "USD"
	}
	if cfg.Prices.BaseURL == "" {
		cfg.Prices.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Prices.Timeout == 0 {
		cfg.Prices.Timeout = Duration(10 * time.Second)
	}
	if cfg.Prices.PriceCacheTTL == 0 {
		cfg.Prices.PriceCacheTTL = Duration(30 * time.Second)
	}
	if cfg.Prices.MarketCacheTTL == 0 {
		cfg.Prices.MarketCacheTTL = Duration(60 * time.Second)
	}
	if cfg.Orders.CheckInterval == 0 {
		cfg.Orders.CheckInterval = Duration(30 * time.Second)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback Duration) Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return Duration(d)
		}
	}
	return fallback
}
