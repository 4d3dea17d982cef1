// Package config assembles the service configuration from environment
// variables so main stays lean. Every knob has a development default; only
// secrets are required in production.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "custodia/pkg/platform/strings"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Files     FilesConfig
	Ledger    LedgerConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig configures the Postgres pool. An empty DSN selects the
// in-memory stores.
type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis
// and keeps the rate limiter in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event sink. No brokers means audit events
// stay in the in-memory store.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// JWTConfig configures access token issuance.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	TokenTTL   time.Duration
}

// FilesConfig locates the stored document files.
type FilesConfig struct {
	Root string
}

// LedgerConfig locates the external ledger tools.
type LedgerConfig struct {
	SyncBin    string
	SyncScript string
	ListBin    string
	ListScript string
	Workdir    string
	Timeout    time.Duration
}

// RateLimitConfig bounds requests per client IP over a rolling window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Disabled bool
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string
	Format string
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:            envString("CUSTODIA_ADDR", ":8080"),
			ShutdownTimeout: envDuration("CUSTODIA_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             os.Getenv("CUSTODIA_DB_DSN"),
			MaxOpenConns:    envInt("CUSTODIA_DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("CUSTODIA_DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("CUSTODIA_DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("CUSTODIA_REDIS_URL"),
			PoolSize:     envInt("CUSTODIA_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CUSTODIA_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("CUSTODIA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CUSTODIA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CUSTODIA_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("CUSTODIA_KAFKA_BROKERS"),
			AuditTopic: envString("CUSTODIA_KAFKA_AUDIT_TOPIC", "custodia.audit"),
		},
		JWT: JWTConfig{
			// Development default, must be overridden in production.
			SigningKey: envString("CUSTODIA_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     envString("CUSTODIA_JWT_ISSUER", "custodia"),
			Audience:   envString("CUSTODIA_JWT_AUDIENCE", "custodia-api"),
			TokenTTL:   envDuration("CUSTODIA_JWT_TOKEN_TTL", time.Hour),
		},
		Files: FilesConfig{
			Root: envString("CUSTODIA_FILES_ROOT", "./data/files"),
		},
		Ledger: LedgerConfig{
			SyncBin:    envString("CUSTODIA_LEDGER_SYNC_BIN", "ledger-sync-tool"),
			SyncScript: os.Getenv("CUSTODIA_LEDGER_SYNC_SCRIPT"),
			ListBin:    envString("CUSTODIA_LEDGER_LIST_BIN", "ledger-list-tool"),
			ListScript: os.Getenv("CUSTODIA_LEDGER_LIST_SCRIPT"),
			Workdir:    os.Getenv("CUSTODIA_LEDGER_WORKDIR"),
			Timeout:    envDuration("CUSTODIA_LEDGER_TIMEOUT", 30*time.Second),
		},
		RateLimit: RateLimitConfig{
			Requests: envInt("CUSTODIA_RATELIMIT_REQUESTS", 100),
			Window:   envDuration("CUSTODIA_RATELIMIT_WINDOW", time.Minute),
			Disabled: os.Getenv("CUSTODIA_RATELIMIT_DISABLED") == "true",
		},
		Log: LogConfig{
			Level:  envString("CUSTODIA_LOG_LEVEL", "info"),
			Format: envString("CUSTODIA_LOG_FORMAT", "json"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	return pstrings.DedupeAndTrim(strings.Split(v, ","))
}
