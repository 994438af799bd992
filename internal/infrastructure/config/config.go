package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Log          LogConfig
	Cache        CacheConfig
	Sweep        SweepConfig
	Notification NotificationConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// CacheConfig holds entity cache settings
type CacheConfig struct {
	// Backend selects "redis" or "memory"; an unreachable redis falls back
	// to memory at startup
	Backend     string
	PropertyTTL time.Duration
	ListingTTL  time.Duration
}

// SweepConfig tunes the periodic lifecycle sweeps
type SweepConfig struct {
	Enabled              bool
	Interval             time.Duration
	BatchSize            int
	ExpiryReminderWindow time.Duration
	Workers              int
	JobTimeout           time.Duration
}

// NotificationConfig holds delivery retry policy
type NotificationConfig struct {
	MaxAttempts int
	BackoffBase time.Duration
	// Channels lists the default fan-out, e.g. ["IN_APP", "EMAIL"]
	Channels []string
	// GatewayBaseURL points at the outbound delivery gateway; when empty
	// only the in-app channel is wired
	GatewayBaseURL        string
	GatewayAPIKey         string
	GatewayTimeoutSeconds int
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with ESTATE_ prefix (e.g., ESTATE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ESTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Cache: CacheConfig{
			Backend:     v.GetString("cache.backend"),
			PropertyTTL: v.GetDuration("cache.property_ttl"),
			ListingTTL:  v.GetDuration("cache.listing_ttl"),
		},
		Sweep: SweepConfig{
			Enabled:              v.GetBool("sweep.enabled"),
			Interval:             v.GetDuration("sweep.interval"),
			BatchSize:            v.GetInt("sweep.batch_size"),
			ExpiryReminderWindow: v.GetDuration("sweep.expiry_reminder_window"),
			Workers:              v.GetInt("sweep.workers"),
			JobTimeout:           v.GetDuration("sweep.job_timeout"),
		},
		Notification: NotificationConfig{
			MaxAttempts:           v.GetInt("notification.max_attempts"),
			BackoffBase:           v.GetDuration("notification.backoff_base"),
			Channels:              v.GetStringSlice("notification.channels"),
			GatewayBaseURL:        v.GetString("notification.gateway_base_url"),
			GatewayAPIKey:         v.GetString("notification.gateway_api_key"),
			GatewayTimeoutSeconds: v.GetInt("notification.gateway_timeout_seconds"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "estate-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "estate"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.PropertyTTL == 0 {
		cfg.Cache.PropertyTTL = 4 * time.Hour
	}
	if cfg.Cache.ListingTTL == 0 {
		cfg.Cache.ListingTTL = 30 * time.Minute
	}
	if cfg.Sweep.Interval == 0 {
		cfg.Sweep.Interval = time.Hour
	}
	if cfg.Sweep.BatchSize == 0 {
		cfg.Sweep.BatchSize = 100
	}
	if cfg.Sweep.ExpiryReminderWindow == 0 {
		cfg.Sweep.ExpiryReminderWindow = 30 * 24 * time.Hour
	}
	if cfg.Sweep.Workers == 0 {
		cfg.Sweep.Workers = 3
	}
	if cfg.Sweep.JobTimeout == 0 {
		cfg.Sweep.JobTimeout = 10 * time.Minute
	}
	if cfg.Notification.MaxAttempts == 0 {
		cfg.Notification.MaxAttempts = 5
	}
	if cfg.Notification.BackoffBase == 0 {
		cfg.Notification.BackoffBase = time.Minute
	}
	if len(cfg.Notification.Channels) == 0 {
		cfg.Notification.Channels = []string{"IN_APP", "EMAIL"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be \"memory\" or \"redis\", got %q", c.Cache.Backend)
	}

	if c.Notification.MaxAttempts < 1 {
		return fmt.Errorf("notification.max_attempts must be at least 1")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address for the Redis client
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
