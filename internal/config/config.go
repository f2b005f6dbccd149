// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type rawConfig struct {
	PollInterval    int    `long:"poll-interval" env:"POLL_INTERVAL" default:"3600" description:"Seconds between poll cycles"`
	FeedsConfigPath string `long:"feeds-config" env:"FEEDS_CONFIG_PATH" description:"Optional YAML feed list (compiled-in list when empty)"`

	StateBackend   string `long:"state-backend" env:"STATE_BACKEND" default:"file" description:"Dedup state backend: file, sqlite, postgres or redis"`
	StateFile      string `long:"state-file" env:"STATE_FILE" default:".feedhook_state.json" description:"JSON state file for the file backend"`
	SQLitePath     string `long:"sqlite-path" env:"SQLITE_PATH" default:"feedhook.db" description:"Database file for the sqlite backend"`
	DatabaseURL    string `long:"database-url" env:"DATABASE_URL" description:"Connection string for the postgres backend"`
	RedisAddr      string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address"`
	RedisPassword  string `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	RedisDB        int    `long:"redis-db" env:"REDIS_DB" default:"0" description:"Redis database number"`
	RedisKeyPrefix string `long:"redis-key-prefix" env:"REDIS_KEY_PREFIX" default:"feedhook:seen:" description:"Prefix of per-feed redis sets"`

	UserAgent          string        `long:"user-agent" env:"USER_AGENT" default:"rss-to-discord/1.0" description:"User agent for feed requests"`
	FetchTimeout       time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10s" description:"Feed fetch timeout"`
	FetchRetryAttempts int           `long:"fetch-retry-attempts" env:"FETCH_RETRY_ATTEMPTS" default:"2" description:"Attempts per feed fetch"`
	ImageTimeout       time.Duration `long:"image-timeout" env:"IMAGE_TIMEOUT" default:"6s" description:"Image probe timeout"`
	ImageCacheTTL      time.Duration `long:"image-cache-ttl" env:"IMAGE_CACHE_TTL" default:"1h" description:"How long an accepted image URL is remembered"`
	WebhookTimeout     time.Duration `long:"webhook-timeout" env:"WEBHOOK_TIMEOUT" default:"15s" description:"Webhook POST timeout"`
	WebhookRatePerMin  int           `long:"webhook-rate" env:"WEBHOOK_RATE_PER_MINUTE" default:"30" description:"Posts per minute per webhook, 0 disables pacing"`

	Debug          bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	LogFile        string `long:"log-file" env:"LOG_FILE" description:"Also write logs to this rotated file"`
	LogMaxSizeMB   int    `long:"log-max-size" env:"LOG_MAX_SIZE_MB" default:"10" description:"Log file size before rotation (MB)"`
	LogMaxBackups  int    `long:"log-max-backups" env:"LOG_MAX_BACKUPS" default:"3" description:"Rotated log files to keep"`
	LogMaxAgeDays  int    `long:"log-max-age" env:"LOG_MAX_AGE_DAYS" default:"14" description:"Days to keep rotated log files"`
	Monitoring     bool   `long:"monitoring" env:"ENABLE_HTTP_MONITORING" description:"Serve /health, /metrics and /state"`
	MonitoringPort string `long:"monitoring-port" env:"MONITORING_PORT" default:"8080" description:"Monitoring server port"`
}

type Config struct {
	PollInterval    time.Duration
	FeedsConfigPath string

	// Dedup state
	StateBackend   string
	StateFile      string
	SQLitePath     string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// Network
	UserAgent          string
	FetchTimeout       time.Duration
	FetchRetryAttempts int
	ImageTimeout       time.Duration
	ImageCacheTTL      time.Duration
	WebhookTimeout     time.Duration
	WebhookRatePerMin  int

	// Logging and monitoring
	Debug          bool
	LogFile        string
	LogMaxSizeMB   int
	LogMaxBackups  int
	LogMaxAgeDays  int
	Monitoring     bool
	MonitoringPort string
}

// Load reads the configuration from environment variables only. The parser
// is handed no arguments, so command-line flags are never consulted.
func Load() (*Config, error) {
	var raw rawConfig

	parser := flags.NewParser(&raw, flags.None)
	if _, err := parser.ParseArgs([]string{}); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Config{
		PollInterval:       time.Duration(raw.PollInterval) * time.Second,
		FeedsConfigPath:    raw.FeedsConfigPath,
		StateBackend:       raw.StateBackend,
		StateFile:          raw.StateFile,
		SQLitePath:         raw.SQLitePath,
		DatabaseURL:        raw.DatabaseURL,
		RedisAddr:          raw.RedisAddr,
		RedisPassword:      raw.RedisPassword,
		RedisDB:            raw.RedisDB,
		RedisKeyPrefix:     raw.RedisKeyPrefix,
		UserAgent:          raw.UserAgent,
		FetchTimeout:       raw.FetchTimeout,
		FetchRetryAttempts: raw.FetchRetryAttempts,
		ImageTimeout:       raw.ImageTimeout,
		ImageCacheTTL:      raw.ImageCacheTTL,
		WebhookTimeout:     raw.WebhookTimeout,
		WebhookRatePerMin:  raw.WebhookRatePerMin,
		Debug:              raw.Debug,
		LogFile:            raw.LogFile,
		LogMaxSizeMB:       raw.LogMaxSizeMB,
		LogMaxBackups:      raw.LogMaxBackups,
		LogMaxAgeDays:      raw.LogMaxAgeDays,
		Monitoring:         raw.Monitoring,
		MonitoringPort:     raw.MonitoringPort,
	}

	if cfg.FetchRetryAttempts < 1 {
		cfg.FetchRetryAttempts = 1
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be a positive number of seconds")
	}
	switch c.StateBackend {
	case BackendFile:
		if c.StateFile == "" {
			return fmt.Errorf("STATE_FILE is required for the file backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("STATE_BACKEND must be one of file, sqlite, postgres, redis (got %q)", c.StateBackend)
	}
	if c.WebhookRatePerMin < 0 {
		return fmt.Errorf("WEBHOOK_RATE_PER_MINUTE must not be negative")
	}
	return nil
}
