package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger         `mapstructure:"logger"`
	DB         Database       `mapstructure:"database"`
	API        API            `mapstructure:"api"`
	Scheduler  Scheduler      `mapstructure:"scheduler"`
	MarketData MarketData     `mapstructure:"market_data"`
	Backtest   Backtest       `mapstructure:"backtest"`
	Cache      Cache          `mapstructure:"cache"`
	Telegram   TelegramConfig `mapstructure:"telegram"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type Scheduler struct {
	Enabled         bool          `mapstructure:"enabled"`
	TickSpec        string        `mapstructure:"tick_spec"`
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type API struct {
	Port            int           `mapstructure:"port"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MarketData configures the live bar feed and its synthetic fallback.
type MarketData struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	RetryCount          int           `mapstructure:"retry_count"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	SyntheticSeed       int64         `mapstructure:"synthetic_seed"`
	SyntheticStartPrice float64       `mapstructure:"synthetic_start_price"`
	SyntheticVolatility float64       `mapstructure:"synthetic_volatility"`
}

type Backtest struct {
	InitialCapital        float64 `mapstructure:"initial_capital"`
	PositionSizePct       float64 `mapstructure:"position_size_pct"`
	DefaultRange          string  `mapstructure:"default_range"`
	MaxOptimizeCandidates int     `mapstructure:"max_optimize_candidates"`
	OptimizeTop           int     `mapstructure:"optimize_top"`
	NotifyResults         bool    `mapstructure:"notify_results"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	BarsExpiration    time.Duration `mapstructure:"bars_expiration"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token"`
	URL                       string        `mapstructure:"url"`
	ChatID                    int64         `mapstructure:"chat_id"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.rate_limit", 10)
	viper.SetDefault("api.rate_limit_burst", 30)
	viper.SetDefault("api.shutdown_timeout", 10*time.Second)
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.tick_spec", "@every 1m")
	viper.SetDefault("scheduler.max_concurrency", 4)
	viper.SetDefault("scheduler.timeout_duration", 5*time.Minute)
	viper.SetDefault("market_data.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("market_data.timeout", 10*time.Second)
	viper.SetDefault("market_data.retry_count", 1)
	viper.SetDefault("market_data.max_request_per_minute", 60)
	viper.SetDefault("market_data.synthetic_seed", 42)
	viper.SetDefault("market_data.synthetic_start_price", 100)
	viper.SetDefault("market_data.synthetic_volatility", 0.02)
	viper.SetDefault("backtest.initial_capital", 10000)
	viper.SetDefault("backtest.position_size_pct", 0.95)
	viper.SetDefault("backtest.default_range", "1y")
	viper.SetDefault("backtest.max_optimize_candidates", 500)
	viper.SetDefault("backtest.optimize_top", 10)
	viper.SetDefault("cache.default_expiration", 10*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 15*time.Minute)
	viper.SetDefault("cache.bars_expiration", 15*time.Minute)
	viper.SetDefault("telegram.timeout_duration", 10*time.Second)
	viper.SetDefault("telegram.max_global_request_per_second", 20)
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}
