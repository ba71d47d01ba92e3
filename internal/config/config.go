// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 永続化バックエンドの種別。
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Store
	StoreBackend string
	DatabaseURL  string

	// Session
	SessionStore           string
	RedisURL               string
	SessionMaxAge          int
	SessionCleanupInterval time.Duration

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS / CSRF
	CORSAllowedOrigin string
	CSRFEnabled       bool

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitAuth    int

	// Seed
	SeedSampleData bool

	// Logging
	LogLevel string
}

// LoadDotEnv はカレントディレクトリの.envを環境変数に読み込む。
// 既に設定されている環境変数は上書きしない。ファイルが存在しない場合は何もしない。
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// Load は環境変数からConfigを読み込む。
// 不正な値や条件付き必須項目の欠落はまとめて1つのエラーとして返す。
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.StoreBackend = getEnvString("STORE_BACKEND", BackendMemory)
	if cfg.StoreBackend != BackendMemory && cfg.StoreBackend != BackendPostgres {
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be one of memory, postgres: got %q", cfg.StoreBackend))
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.SessionStore = getEnvString("SESSION_STORE", cfg.StoreBackend)
	switch cfg.SessionStore {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be one of memory, postgres, redis: got %q", cfg.SessionStore))
	}

	if (cfg.StoreBackend == BackendPostgres || cfg.SessionStore == BackendPostgres) && cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required when STORE_BACKEND or SESSION_STORE is postgres"))
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.SessionStore == BackendRedis && cfg.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is required when SESSION_STORE is redis"))
	}

	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400, &errs)
	if cfg.SessionMaxAge <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_MAX_AGE must be positive: got %d", cfg.SessionMaxAge))
	}
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Hour, &errs)

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")

	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")
	cfg.CSRFEnabled = getEnvBool("CSRF_ENABLED", false, &errs)

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120, &errs)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10, &errs)
	if cfg.RateLimitGeneral <= 0 || cfg.RateLimitAuth <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_GENERAL and RATE_LIMIT_AUTH must be positive"))
	}

	cfg.SeedSampleData = getEnvBool("SEED_SAMPLE_DATA", false, &errs)

	cfg.LogLevel = strings.ToLower(getEnvString("LOG_LEVEL", "info"))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: got %q", cfg.LogLevel))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer: got %q", key, v))
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a boolean: got %q", key, v))
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s must be a positive duration: got %q", key, v))
		return defaultVal
	}
	return d
}
