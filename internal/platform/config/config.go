package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration read from the environment.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string
	PolicyFile  string

	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Auth     AuthConfig
}

// DatabaseConfig configures the Postgres pool. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the daily summary cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SummaryTTL   time.Duration
}

// NATSConfig configures domain event publishing. An empty URL disables it.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	Name          string
}

// AuthConfig configures verification of identity provider access tokens.
type AuthConfig struct {
	Issuer     string
	Audience   string
	SigningKey string
}

// IsDevelopment reports whether dev defaults are acceptable.
func (s Server) IsDevelopment() bool {
	return s.Environment == "" || s.Environment == "development"
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        getenv("HYDRATION_ADDR", ":8080"),
		Environment: getenv("HYDRATION_ENV", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		PolicyFile:  os.Getenv("HYDRATION_POLICY_FILE"),
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		NATS: NATSConfig{
			URL:           os.Getenv("NATS_URL"),
			SubjectPrefix: getenv("NATS_SUBJECT_PREFIX", "hydration"),
			Name:          getenv("NATS_CLIENT_NAME", "hydration-api"),
		},
		Auth: AuthConfig{
			Issuer:     os.Getenv("AUTH_ISSUER"),
			Audience:   getenv("AUTH_AUDIENCE", "hydration-api"),
			SigningKey: os.Getenv("AUTH_SIGNING_KEY"),
		},
	}

	var err error
	if cfg.Database.MaxOpenConns, err = getenvInt("DATABASE_MAX_OPEN_CONNS", 20); err != nil {
		return Server{}, err
	}
	if cfg.Database.MaxIdleConns, err = getenvInt("DATABASE_MAX_IDLE_CONNS", 5); err != nil {
		return Server{}, err
	}
	if cfg.Database.ConnMaxLifetime, err = getenvDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.Redis.PoolSize, err = getenvInt("REDIS_POOL_SIZE", 10); err != nil {
		return Server{}, err
	}
	if cfg.Redis.MinIdleConns, err = getenvInt("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return Server{}, err
	}
	if cfg.Redis.DialTimeout, err = getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.ReadTimeout, err = getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.WriteTimeout, err = getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.SummaryTTL, err = getenvDuration("REDIS_SUMMARY_TTL", 5*time.Minute); err != nil {
		return Server{}, err
	}

	if cfg.Auth.SigningKey == "" {
		if !cfg.IsDevelopment() {
			return Server{}, fmt.Errorf("AUTH_SIGNING_KEY is required outside development")
		}
		// Use a default for development - must be overridden in production
		cfg.Auth.SigningKey = "dev-secret-key-change-in-production"
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
