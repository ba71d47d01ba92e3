package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// RetryConfig は起動時の接続リトライ設定。
type RetryConfig struct {
	Attempts       int           // 最大試行回数。1以下なら1回だけ試行する
	InitialBackoff time.Duration // 初回の待機時間
	MaxBackoff     time.Duration // 待機時間の上限
}

// DefaultRetryConfig はコンテナ起動順のずれを吸収できる程度の既定値を返す。
// 初回500ms、2倍ずつ増加、最大8秒、6回まで。
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:       6,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
	}
}

// CalculateBackoff は失敗回数に基づいて指数バックオフの待機時間を計算する。
func (c RetryConfig) CalculateBackoff(failures int) time.Duration {
	delay := c.InitialBackoff
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	return delay
}

// ConnectWithRetry は疎通を確認できるまでConnectを繰り返す。
// ctxがキャンセルされた場合は待機を打ち切り、最後のエラーを返す。
func ConnectWithRetry(ctx context.Context, databaseURL string, cfg RetryConfig) (*sql.DB, error) {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		db, err := Connect(ctx, databaseURL)
		if err == nil {
			return db, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		delay := cfg.CalculateBackoff(i)
		slog.Warn("database not ready, retrying",
			slog.Int("attempt", i+1),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}
	return nil, lastErr
}
