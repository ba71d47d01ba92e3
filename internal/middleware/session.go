// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/KC-99/workmatch/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
const SessionCookieName = "session_id"

// ActorResolver はセッショントークンから認証済みユーザーを解決するインターフェース。
// session.Managerが実装する。
type ActorResolver interface {
	Resolve(ctx context.Context, token string) (*model.Actor, error)
}

// NewSessionLoader はHTTP Only Cookieからセッションを読み取り、
// 有効であれば認証済みユーザーをリクエストコンテキストに注入するミドルウェアを返す。
// 未認証リクエストもそのまま通過させる。認証の要否はRequireSessionで判定する。
// セッションストアに到達できない場合は未認証と区別するため500を返す。
func NewSessionLoader(resolver ActorResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := resolver.Resolve(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to resolve session",
					slog.String("error", err.Error()),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				WriteInternalServerError(w)
				return
			}
			if actor == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// RequireSession は認証済みでないリクエストに401を返すミドルウェア。
// NewSessionLoaderの内側に配置する。
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFromContext(r.Context()) == nil {
			WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}
