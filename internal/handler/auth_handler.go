// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/KC-99/workmatch/internal/auth"
	"github.com/KC-99/workmatch/internal/middleware"
	"github.com/KC-99/workmatch/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in auth.RegisterInput, previousToken string) (*auth.Result, error)
	Login(ctx context.Context, in auth.LoginInput, previousToken string) (*auth.Result, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, actor *model.Actor) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は登録・ログイン・ログアウト・ログインユーザー取得のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// Register はユーザーを登録し、そのままログイン状態にする。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.Register(r.Context(), in, sessionToken(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Session.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(result.User))
}

// Login はメールアドレスとパスワードで認証する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), in, sessionToken(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Session.ID)
	writeJSON(w, http.StatusOK, toUserResponse(result.User))
}

// Logout はセッションを破棄する。
// 有効なセッションがない場合は401を返すが、期限切れのCookieは削除する。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if middleware.ActorFromContext(r.Context()) == nil {
		if sessionToken(r) != "" {
			h.clearSessionCookie(w)
		}
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	if err := h.service.Logout(r.Context(), sessionToken(r)); err != nil {
		slog.Error("failed to logout",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		)
		writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrCodeInternal,
			Message: "Could not log out",
		})
		return
	}

	h.clearSessionCookie(w)
	writeMessage(w, "Logged out successfully")
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// setSessionCookie はセッションCookieを設定する（HTTP Only）。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
