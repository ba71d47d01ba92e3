package middleware

import (
	"context"

	"github.com/KC-99/workmatch/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	actorContextKey     = contextKey("actor")
	requestIDContextKey = contextKey("request_id")
)

// ActorFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 未認証の場合はnilを返す。
func ActorFromContext(ctx context.Context) *model.Actor {
	actor, _ := ctx.Value(actorContextKey).(*model.Actor)
	return actor
}

// ContextWithActor はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithActor(ctx context.Context, actor *model.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// RequestIDFromContext はリクエストIDを取得する。未設定の場合は空文字列を返す。
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}
