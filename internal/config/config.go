// Package config loads and validates the scanner's runtime configuration
// from YAML files, environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root of all runtime settings.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	CryptoCompare CryptoCompareConfig `mapstructure:"cryptocompare"`
	CoinGecko     CoinGeckoConfig     `mapstructure:"coingecko"`
	Coinbase      CoinbaseConfig      `mapstructure:"coinbase"`
	Aggregator    AggregatorConfig
	Arbitrage     ArbitrageConfig
	Worker        WorkerConfig
	Cache         CacheConfig
}

// ServerConfig controls the HTTP listener and which extra UIs it mounts.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
}

// DatabaseConfig describes the Postgres connection and its pool limits.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

func (d DatabaseConfig) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// RedisConfig names the two Redis instances the service talks to. The queue
// and the cache are kept on separate instances so a FLUSHDB on one never
// touches the other.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for Asynq task queue (required).
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for application cache (required).
}

// CryptoCompareConfig holds settings for the CryptoCompare price provider.
type CryptoCompareConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	BaseURL  string  `mapstructure:"base_url"`
	APIKey   string  `mapstructure:"api_key"`
	Timeout  int     `mapstructure:"timeout_sec"`
	VenueFee float64 `mapstructure:"venue_fee"` // Taker fee fraction used in cross-exchange scans.
}

// CoinGeckoConfig holds settings for the CoinGecko price provider.
type CoinGeckoConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	BaseURL  string  `mapstructure:"base_url"`
	APIKey   string  `mapstructure:"api_key"`
	Timeout  int     `mapstructure:"timeout_sec"`
	VenueFee float64 `mapstructure:"venue_fee"`
}

// CoinbaseConfig holds settings for the Coinbase price provider.
type CoinbaseConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	BaseURL  string  `mapstructure:"base_url"`
	Timeout  int     `mapstructure:"timeout_sec"`
	VenueFee float64 `mapstructure:"venue_fee"`
}

// AggregatorConfig holds provider failover and rate caching settings.
type AggregatorConfig struct {
	CacheBackend          string `mapstructure:"cache_backend"` // "memory" or "redis".
	CacheTTLSec           int    `mapstructure:"cache_ttl_sec"`
	MaxErrorsBeforeSwitch int    `mapstructure:"max_errors_before_switch"`
	AutoReorder           bool   `mapstructure:"auto_reorder"`
	PreferredProvider     string `mapstructure:"preferred_provider"`
}

// ArbitrageConfig holds default arbitrage detection settings.
type ArbitrageConfig struct {
	MinProfitPct  float64 `mapstructure:"min_profit_pct"`
	StartAmount   float64 `mapstructure:"start_amount"`
	PivotCurrency string  `mapstructure:"pivot_currency"` // Quote currency used for triangular scans.
}

// WorkerConfig sizes the asynq worker pool and its per-task limits.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxRetry    int `mapstructure:"max_retry"`
	TimeoutSec  int `mapstructure:"timeout_sec"`
}

// CacheConfig tunes the latest-scan cache.
type CacheConfig struct {
	LatestScanTTLSec int `mapstructure:"latest_scan_ttl_sec"`
}

var defaults = map[string]any{
	"server.port":           8080,
	"server.serve_swagger":  true,
	"server.serve_asynqmon": true,

	"database.host":                  "db",
	"database.port":                  5432,
	"database.user":                  "postgres",
	"database.password":              "postgres",
	"database.name":                  "arbscan",
	"database.sslmode":               "disable",
	"database.max_open_conns":        10,
	"database.max_idle_conns":        5,
	"database.conn_max_lifetime_sec": 300,

	"redis.asynq_addr": "redis_asynq:6380",
	"redis.cache_addr": "redis_cache:6381",

	"cryptocompare.enabled":     true,
	"cryptocompare.base_url":    "https://min-api.cryptocompare.com",
	"cryptocompare.api_key":     "",
	"cryptocompare.timeout_sec": 5,
	"cryptocompare.venue_fee":   0.001,

	"coingecko.enabled":     true,
	"coingecko.base_url":    "https://api.coingecko.com/api/v3",
	"coingecko.api_key":     "",
	"coingecko.timeout_sec": 5,
	"coingecko.venue_fee":   0.002,

	"coinbase.enabled":     true,
	"coinbase.base_url":    "https://api.coinbase.com",
	"coinbase.timeout_sec": 5,
	"coinbase.venue_fee":   0.0025,

	"aggregator.cache_backend":            "memory",
	"aggregator.cache_ttl_sec":            300,
	"aggregator.max_errors_before_switch": 3,
	"aggregator.auto_reorder":             true,
	"aggregator.preferred_provider":       "",

	"arbitrage.min_profit_pct": 1.0,
	"arbitrage.start_amount":   1000.0,
	"arbitrage.pivot_currency": "USD",

	"worker.concurrency": 5,
	"worker.max_retry":   3,
	"worker.timeout_sec": 60,

	"cache.latest_scan_ttl_sec": 300,
}

// LoadConfig assembles the effective configuration. Resolution order is
// environment variables (ARBSCAN_ prefix), then an optional config.yaml,
// then the built-in defaults.
func LoadConfig() (*Config, error) {
	// optional .env for local runs
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Skipping .env: %v\n", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("./internal/config")

	viper.SetEnvPrefix("ARBSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	if err := viper.ReadInConfig(); err != nil {
		// defaults plus env cover everything a config file would
		fmt.Printf("No config file, continuing with defaults and environment: %v\n", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	cfg.normalize()

	return &cfg, nil
}

// normalize repairs pool settings an explicit config file may have zeroed and
// assembles the DSN the repository layer connects with.
func (c *Config) normalize() {
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeSec <= 0 {
		c.Database.ConnMaxLifetimeSec = 300
	}
	c.Database.DSN = c.Database.dsn()
}

// Validate reports every invalid field at once rather than stopping at the
// first, so a broken deployment shows its full list of problems in one run.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	if c.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}

	if c.Redis.AsynqAddr == "" {
		errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set ARBSCAN_REDIS_ASYNQ_ADDR)"))
	}
	if c.Redis.CacheAddr == "" {
		errs = append(errs, fmt.Errorf("redis.cache_addr is required (set ARBSCAN_REDIS_CACHE_ADDR)"))
	}

	if !c.CryptoCompare.Enabled && !c.CoinGecko.Enabled && !c.Coinbase.Enabled {
		errs = append(errs, fmt.Errorf("at least one price provider must be enabled"))
	}
	if fee := c.CryptoCompare.VenueFee; fee < 0 || fee >= 1 {
		errs = append(errs, fmt.Errorf("cryptocompare.venue_fee must be in [0, 1), got %v", fee))
	}
	if fee := c.CoinGecko.VenueFee; fee < 0 || fee >= 1 {
		errs = append(errs, fmt.Errorf("coingecko.venue_fee must be in [0, 1), got %v", fee))
	}
	if fee := c.Coinbase.VenueFee; fee < 0 || fee >= 1 {
		errs = append(errs, fmt.Errorf("coinbase.venue_fee must be in [0, 1), got %v", fee))
	}

	switch c.Aggregator.CacheBackend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("aggregator.cache_backend must be \"memory\" or \"redis\", got %q", c.Aggregator.CacheBackend))
	}
	if c.Aggregator.CacheTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("aggregator.cache_ttl_sec must be positive, got %d", c.Aggregator.CacheTTLSec))
	}
	if c.Aggregator.MaxErrorsBeforeSwitch <= 0 {
		errs = append(errs, fmt.Errorf("aggregator.max_errors_before_switch must be positive, got %d", c.Aggregator.MaxErrorsBeforeSwitch))
	}

	if math.IsNaN(c.Arbitrage.MinProfitPct) || math.IsInf(c.Arbitrage.MinProfitPct, 0) {
		errs = append(errs, fmt.Errorf("arbitrage.min_profit_pct must be a finite number"))
	}
	if math.IsNaN(c.Arbitrage.StartAmount) || math.IsInf(c.Arbitrage.StartAmount, 0) || c.Arbitrage.StartAmount <= 0 {
		errs = append(errs, fmt.Errorf("arbitrage.start_amount must be a positive finite number, got %v", c.Arbitrage.StartAmount))
	}
	if c.Arbitrage.PivotCurrency == "" {
		errs = append(errs, fmt.Errorf("arbitrage.pivot_currency is required"))
	}

	if c.Worker.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
	}
	if c.Worker.MaxRetry < 0 {
		errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
	}
	if c.Worker.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
	}

	if c.Cache.LatestScanTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.latest_scan_ttl_sec must be positive, got %d", c.Cache.LatestScanTTLSec))
	}

	return errors.Join(errs...)
}
