package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all runtime configuration. FromEnv fills it with
// development defaults so main stays lean and a bare `go run` works.
type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	Kafka    Kafka
	Lockout  Lockout
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
	// JWTSigningKey signs access tokens. The default is for development
	// only and must be overridden in production.
	JWTSigningKey string
	TokenTTL      time.Duration
	// MaxAttachmentBytes bounds the evidence upload size.
	MaxAttachmentBytes int64
}

// Database holds the postgres connection settings. An empty URL selects the
// in-memory stores, which keeps local development dependency-free.
type Database struct {
	URL string
}

// Redis holds the lockout store connection settings. Empty URL disables the
// redis-backed lockout and falls back to the in-memory counter.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka holds the audit relay settings. No brokers means the relay is not
// started and audit events stay in the outbox (or the in-memory store).
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Lockout tunes the failed-login throttle.
type Lockout struct {
	MaxFailures int
	Window      time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Server: Server{
			Addr:               envOr("OLHOPIX_ADDR", ":8080"),
			JWTSigningKey:      envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			TokenTTL:           envDurationOr("TOKEN_TTL", 30*time.Minute),
			MaxAttachmentBytes: envInt64Or("MAX_ATTACHMENT_BYTES", 10<<20),
		},
		Database: Database{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			AuditTopic: envOr("AUDIT_TOPIC", "olhopix.audit.events"),
		},
		Lockout: Lockout{
			MaxFailures: envIntOr("LOGIN_MAX_FAILURES", 5),
			Window:      envDurationOr("LOGIN_LOCKOUT_WINDOW", 15*time.Minute),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
