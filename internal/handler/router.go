package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KC-99/workmatch/internal/middleware"
	"github.com/KC-99/workmatch/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionResolver   middleware.ActorResolver
	CORSAllowedOrigin string
	CSRFEnabled       bool
	CSRFConfig        middleware.CSRFConfig
	HSTS              bool
	RateLimiter       *middleware.RateLimiter
	Metrics           middleware.HTTPRequestRecorder

	// 公開エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメイン
	ProfileService     ProfileServiceInterface
	JobService         JobServiceInterface
	ApplicationService ApplicationServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → SecurityHeaders → CORS → SessionLoader → Logging → Recovery → Metrics → [CSRF] → RateLimit(General)
//
// 認証が必要なルートはRequireSessionで個別に保護する。
// /healthと/metricsはレート制限とCSRFの対象外。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HSTS))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSessionLoader(deps.SessionResolver))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:    model.ErrCodeNotFound,
			Message: "Not found",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusMethodNotAllowed, &model.APIError{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "Method not allowed",
		})
	})

	// --- 運用エンドポイント ---
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	profileHandler := NewProfileHandler(deps.ProfileService)
	jobHandler := NewJobHandler(deps.JobService)
	appHandler := NewApplicationHandler(deps.ApplicationService)

	r.Route("/api", func(r chi.Router) {
		// chiではミドルウェアをルートより先に登録する必要がある
		if deps.CSRFEnabled {
			r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		}
		authLimit := func(next http.Handler) http.Handler { return next }
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
			authLimit = deps.RateLimiter.AuthMiddleware()
		}
		if deps.CSRFEnabled {
			r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))
		}

		// 認証
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit).Post("/register", authHandler.Register)
			r.With(authLimit).Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.With(middleware.RequireSession).Get("/me", authHandler.Me)
		})

		// プロフィール
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/workers", profileHandler.ListWorkers)
			r.Get("/worker/{userId}", profileHandler.WorkerByUserID)
			r.Get("/employer/{userId}", profileHandler.EmployerByUserID)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession)
				r.Post("/worker", profileHandler.CreateWorker)
				r.Get("/worker", profileHandler.OwnWorker)
				r.Patch("/worker", profileHandler.UpdateWorker)
				r.Post("/employer", profileHandler.CreateEmployer)
				r.Get("/employer", profileHandler.OwnEmployer)
				r.Patch("/employer", profileHandler.UpdateEmployer)
			})
		})

		// 求人
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", jobHandler.List)
			r.Get("/employer/{employerId}", jobHandler.ListByEmployer)
			r.With(middleware.RequireSession).Get("/my-postings", jobHandler.MyPostings)
			r.Get("/{id}", jobHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession)
				r.Post("/", jobHandler.Create)
				r.Patch("/{id}", jobHandler.Update)
				r.Delete("/{id}", jobHandler.Delete)
			})
		})

		// 応募
		r.Route("/applications", func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Post("/", appHandler.Apply)
			r.Get("/job/{jobId}", appHandler.ListByJob)
			r.Get("/worker", appHandler.ListOwn)
			r.Patch("/{id}/status", appHandler.UpdateStatus)
		})
	})

	return r
}
