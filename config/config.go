package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

type Config struct {
	Log       Logger         `mapstructure:"logger"`
	Storage   Storage        `mapstructure:"storage"`
	DB        Database       `mapstructure:"database"`
	API       API            `mapstructure:"api"`
	Scheduler Scheduler      `mapstructure:"scheduler"`
	Quote     Quote          `mapstructure:"quote"`
	Cache     Cache          `mapstructure:"cache"`
	Ledger    Ledger         `mapstructure:"ledger"`
	Telegram  TelegramConfig `mapstructure:"telegram"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Storage struct {
	Driver string `mapstructure:"driver"`
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
	MigrationsPath  string `mapstructure:"migrations_path"`
}

// URL returns the postgres:// form used by golang-migrate.
func (d Database) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// DSN returns the key=value form used by the gorm postgres driver.
func (d Database) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode)
	if d.TimeZone != "" {
		dsn += fmt.Sprintf(" TimeZone=%s", d.TimeZone)
	}
	return dsn
}

type API struct {
	Port            int           `mapstructure:"port"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Scheduler struct {
	QuoteRefreshCron string        `mapstructure:"quote_refresh_cron"`
	MaxConcurrency   int           `mapstructure:"max_concurrency"`
	TimeoutDuration  time.Duration `mapstructure:"timeout_duration"`
}

type Quote struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	RetryCount          int           `mapstructure:"retry_count"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	QuoteExpiration   time.Duration `mapstructure:"quote_expiration"`
}

type Ledger struct {
	IncludeClearedInOverview bool   `mapstructure:"include_cleared_in_overview"`
	DuplicateCheckPerAccount bool   `mapstructure:"duplicate_check_per_account"`
	DefaultAccountName       string `mapstructure:"default_account_name"`
	TimeZone                 string `mapstructure:"time_zone"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token"`
	ChatID                    int64         `mapstructure:"chat_id"`
	WebhookURL                string        `mapstructure:"webhook_url"`
	PollerTimeout             time.Duration `mapstructure:"poller_timeout"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
	MaxChatRequestPerSecond   int           `mapstructure:"max_chat_request_per_second"`
	RateLimitCleanupDuration  time.Duration `mapstructure:"rate_limit_cleanup_duration"`
	RateLimitExpireDuration   time.Duration `mapstructure:"rate_limit_expire_duration"`
	NotifyOnRefresh           bool          `mapstructure:"notify_on_refresh"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("storage.driver", StorageDriverPostgres)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.migrations_path", "file://migrations")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.rate_limit", 10)
	v.SetDefault("api.rate_limit_burst", 30)
	v.SetDefault("api.shutdown_timeout", 10*time.Second)
	v.SetDefault("scheduler.quote_refresh_cron", "@every 5m")
	v.SetDefault("scheduler.max_concurrency", 4)
	v.SetDefault("scheduler.timeout_duration", time.Minute)
	v.SetDefault("quote.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("quote.timeout", 10*time.Second)
	v.SetDefault("quote.max_request_per_minute", 60)
	v.SetDefault("quote.retry_count", 2)
	v.SetDefault("cache.default_expiration", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)
	v.SetDefault("cache.quote_expiration", time.Minute)
	v.SetDefault("ledger.default_account_name", "Default Account")
	v.SetDefault("ledger.time_zone", "Asia/Shanghai")
	v.SetDefault("telegram.poller_timeout", 10*time.Second)
	v.SetDefault("telegram.timeout_duration", 30*time.Second)
	v.SetDefault("telegram.max_global_request_per_second", 30)
	v.SetDefault("telegram.max_chat_request_per_second", 1)
	v.SetDefault("telegram.rate_limit_cleanup_duration", 10*time.Minute)
	v.SetDefault("telegram.rate_limit_expire_duration", 30*time.Minute)
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
