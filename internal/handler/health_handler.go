package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker は永続化層の疎通確認インターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// healthCheckTimeout は疎通確認の待ち時間の上限。
const healthCheckTimeout = 2 * time.Second

// NewHealthHandler はヘルスチェックのハンドラーを返す。
// 永続化層に到達できない場合は503を返す。
// GET /health
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := checker.PingContext(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
