package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/KC-99/workmatch/internal/application"
	"github.com/KC-99/workmatch/internal/auth"
	"github.com/KC-99/workmatch/internal/config"
	"github.com/KC-99/workmatch/internal/database"
	"github.com/KC-99/workmatch/internal/handler"
	"github.com/KC-99/workmatch/internal/job"
	"github.com/KC-99/workmatch/internal/metrics"
	"github.com/KC-99/workmatch/internal/middleware"
	"github.com/KC-99/workmatch/internal/profile"
	"github.com/KC-99/workmatch/internal/repository"
	"github.com/KC-99/workmatch/internal/security"
	"github.com/KC-99/workmatch/internal/session"
)

// backends は設定に応じて開いた永続化層を保持する。
type backends struct {
	store    *repository.Store
	sessions repository.SessionRepository
	health   pingers

	db    *sql.DB
	redis *redis.Client
}

// pingers は複数の永続化層の疎通確認をまとめる。1つでも失敗すればエラーを返す。
type pingers []handler.HealthChecker

func (p pingers) PingContext(ctx context.Context) error {
	for _, c := range p {
		if err := c.PingContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// redisPinger はredis.ClientをHealthCheckerとして扱う。
type redisPinger struct {
	client *redis.Client
}

func (r redisPinger) PingContext(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// openBackends はSTORE_BACKENDとSESSION_STOREに従ってストアとセッションリポジトリを開く。
func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{}

	if cfg.StoreBackend == config.BackendPostgres || cfg.SessionStore == config.BackendPostgres {
		db, err := database.ConnectWithRetry(ctx, cfg.DatabaseURL, database.DefaultRetryConfig())
		if err != nil {
			return nil, err
		}
		b.db = db
		slog.Info("database connection established")
	}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		b.store = repository.NewPostgresStore(b.db)
	default:
		b.store = repository.NewMemoryStore().Store()
	}
	b.health = append(b.health, b.store.Health)

	switch cfg.SessionStore {
	case config.BackendPostgres:
		b.sessions = repository.NewPostgresSessionRepo(b.db)
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		b.redis = redis.NewClient(opts)
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.sessions = repository.NewRedisSessionRepo(b.redis)
		b.health = append(b.health, redisPinger{client: b.redis})
		slog.Info("redis connection established")
	default:
		b.sessions = repository.NewMemorySessionRepo()
	}

	return b, nil
}

// Close は開いた接続をすべて閉じる。
func (b *backends) Close() error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	if b.db != nil {
		errs = append(errs, b.db.Close())
	}
	return errors.Join(errs...)
}

// newMetrics はアプリケーション用のレジストリとCollectorを生成する。
func newMetrics() (*prometheus.Registry, *metrics.Collector) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewCollector(reg)
}

// server はHTTPハンドラーと、停止時に解放するリソースを保持する。
type server struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
}

// buildServer はサービス層とミドルウェアをワイヤリングしてHTTPハンドラーを構築する。
// 戻り値のrateLimiterは終了時にStopすること。
func buildServer(cfg *config.Config, b *backends, reg *prometheus.Registry, mc *metrics.Collector, bcryptCost int) *server {
	sessions := session.NewManager(b.sessions, b.store.Users, session.Config{
		MaxAge: time.Duration(cfg.SessionMaxAge) * time.Second,
	})
	sanitizer := security.NewTextSanitizer()

	rl := middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth),
		mc,
	)

	csrfConfig := middleware.CSRFConfig{
		CookieSecure: cfg.CookieSecure,
		CookieDomain: cfg.CookieDomain,
	}

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		SessionResolver:   sessions,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFEnabled:       cfg.CSRFEnabled,
		CSRFConfig:        csrfConfig,
		HSTS:              cfg.CookieSecure,
		RateLimiter:       rl,
		Metrics:           mc,

		HealthChecker:  b.health,
		MetricsHandler: metrics.Handler(reg),

		AuthService: auth.NewService(b.store.Users, sessions, mc, auth.ServiceConfig{BcryptCost: bcryptCost}),
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		ProfileService:     profile.NewService(b.store.WorkerProfiles, b.store.EmployerProfiles, sanitizer, mc),
		JobService:         job.NewService(b.store.JobPostings, sanitizer, mc),
		ApplicationService: application.NewService(b.store.JobApplications, b.store.JobPostings, sanitizer, mc),
	}

	return &server{
		handler:     handler.NewRouter(deps),
		rateLimiter: rl,
	}
}
