package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds settings shared by both services. Author-lookup fields are only read by the book service.
type Config struct {
	Addr         string
	DatabaseDSN  string
	QueryTimeout time.Duration
	WriteTimeout time.Duration

	LogLevel  string
	LogPretty bool

	AuthorsBaseURL          string
	AuthorLookupMaxAttempts int
	AuthorLookupTimeout     time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
	CORSOrigins    []string
	EnableHSTS     bool
}

// LoadEnvFiles reads .env and .env.local without overriding variables already set by the runtime.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads the configuration for a service. defaultAddr and defaultDSN differ between the
// book and author services so both can run side by side with no env set.
func Load(defaultAddr, defaultDSN string) (*Config, error) {
	LoadEnvFiles()

	cfg := &Config{
		Addr:        getEnv("APP_ADDR", defaultAddr),
		DatabaseDSN: getEnv("DB_DSN", defaultDSN),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnv("LOG_PRETTY", "false") == "true",
		EnableHSTS:  getEnv("ENABLE_HSTS", "false") == "true",
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}

	var err error
	if cfg.QueryTimeout, err = getDuration("DB_QUERY_TIMEOUT", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.AuthorLookupTimeout, err = getDuration("AUTHOR_LOOKUP_TIMEOUT", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.AuthorLookupMaxAttempts, err = getInt("AUTHOR_LOOKUP_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	maxBody, err := getInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxBodyBytes = int64(maxBody)

	cfg.AuthorsBaseURL = getEnv("AUTHORS_BASE_URL", "")
	if cfg.AuthorsBaseURL == "" {
		host := getEnv("AUTHORS_HOST", "localhost")
		port := getEnv("AUTHORS_PORT", "8081")
		cfg.AuthorsBaseURL = "http://" + net.JoinHostPort(host, port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.AuthorLookupMaxAttempts < 1 {
		return fmt.Errorf("AUTHOR_LOOKUP_MAX_ATTEMPTS must be at least 1, got %d", c.AuthorLookupMaxAttempts)
	}
	if c.AuthorLookupTimeout <= 0 {
		return fmt.Errorf("AUTHOR_LOOKUP_TIMEOUT must be positive, got %s", c.AuthorLookupTimeout)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive, got %s", c.QueryTimeout)
	}
	return nil
}

// RedactedDSN hides the credentials part of the DSN for logging.
func (c *Config) RedactedDSN() string {
	return RedactDSN(c.DatabaseDSN)
}

func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
