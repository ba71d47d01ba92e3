package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/KC-99/workmatch/internal/model"
)

// レート制限の種別。メトリクスとログのラベルに使用する。
const (
	ScopeGeneral = "general"
	ScopeAuth    = "auth"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート（req/sec）。120/60 = 2 req/sec
	GeneralBurst    int           // API全般のバーストサイズ
	AuthRate        rate.Limit    // 登録・ログインのレート（req/sec）。10/60
	AuthBurst       int           // 登録・ログインのバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// API全般 120 req/min（ユーザーまたはIPごと）、登録・ログイン 10 req/min（IPごと）。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return PerMinuteRateLimiterConfig(120, 10)
}

// PerMinuteRateLimiterConfig は1分あたりのリクエスト数から設定を生成する。
// バーストサイズは1分間の上限と同じ値にする。
func PerMinuteRateLimiterConfig(generalPerMin, authPerMin int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(generalPerMin) / 60.0),
		GeneralBurst:    generalPerMin,
		AuthRate:        rate.Limit(float64(authPerMin) / 60.0),
		AuthBurst:       authPerMin,
		CleanupInterval: 5 * time.Minute,
	}
}

// RateLimitRecorder はレート制限の発動を記録するインターフェース。
// metrics.Collectorが実装する。
type RateLimitRecorder interface {
	RecordRateLimited(scope string)
}

// keyLimiter はキーごとのレートリミッターと最終アクセス時刻を保持する。
type keyLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterSet はキー（ユーザーIDまたはIP）ごとのリミッター集合。
type limiterSet struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*keyLimiter
}

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		limit:   limit,
		burst:   burst,
		entries: make(map[string]*keyLimiter),
	}
}

// get はキーのリミッターを取得し、存在しなければ作成する。
func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	kl, ok := s.entries[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = kl
	}
	kl.lastAccess = now
	return kl.limiter
}

// sweep は最終アクセスからttl以上経過したエントリを削除する。
func (s *limiterSet) sweep(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, kl := range s.entries {
		if now.Sub(kl.lastAccess) > ttl {
			delete(s.entries, key)
		}
	}
}

func (s *limiterSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RateLimiter はAPI全般と登録・ログインの2種類のレート制限を管理する。
type RateLimiter struct {
	config   RateLimiterConfig
	recorder RateLimitRecorder
	general  *limiterSet
	auth     *limiterSet
	now      func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。recorderはnilでもよい。
// バックグラウンドで期限切れエントリのクリーンアップを開始するため、終了時にStopを呼び出すこと。
func NewRateLimiter(config RateLimiterConfig, recorder RateLimitRecorder) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		recorder: recorder,
		general:  newLimiterSet(config.GeneralRate, config.GeneralBurst),
		auth:     newLimiterSet(config.AuthRate, config.AuthBurst),
		now:      time.Now,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止し、終了を待つ。
// 複数回呼び出してもよい。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
	<-rl.done
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
// 認証済みの場合はユーザーごと、未認証の場合はクライアントIPごとに制限する。
// ユーザーを識別するため、NewSessionLoaderの内側に配置する。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(ScopeGeneral, rl.general, rl.config.GeneralRate, func(r *http.Request) string {
		if actor := ActorFromContext(r.Context()); actor != nil {
			return "user:" + strconv.FormatInt(actor.UserID, 10)
		}
		return "ip:" + clientIP(r)
	})
}

// AuthMiddleware は登録・ログイン専用のレート制限ミドルウェアを返す。
// クライアントIPごとに制限し、API全般のレート制限とは独立に動作する。
func (rl *RateLimiter) AuthMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(ScopeAuth, rl.auth, rl.config.AuthRate, func(r *http.Request) string {
		return clientIP(r)
	})
}

func (rl *RateLimiter) middleware(scope string, set *limiterSet, limit rate.Limit, keyFn func(*http.Request) string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if !set.get(key, rl.now()).Allow() {
				if rl.recorder != nil {
					rl.recorder.RecordRateLimited(scope)
				}
				slog.Warn("rate limit exceeded",
					slog.String("key", key),
					slog.String("limit_type", scope),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				writeRateLimitResponse(w, limit)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されているAPI全般リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.len()
}

// AuthLimiterCount は現在管理されている登録・ログインリミッターのエントリ数を返す。
func (rl *RateLimiter) AuthLimiterCount() int {
	return rl.auth.len()
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	defer close(rl.done)

	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2
	now := rl.now()
	rl.general.sweep(now, ttl)
	rl.auth.sweep(now, ttl)
}

// clientIP はRemoteAddrからポートを除いたアドレスを返す。
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := 1
	if r > 0 {
		retryAfterSec = int(math.Ceil(1.0 / float64(r)))
	}
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
		Code:    model.ErrCodeRateLimited,
		Message: "Too many requests. Please try again later.",
	})
}
