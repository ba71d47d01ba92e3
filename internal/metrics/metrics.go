// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// エンティティ種別ラベル
const (
	KindUser            = "user"
	KindWorkerProfile   = "worker_profile"
	KindEmployerProfile = "employer_profile"
	KindJobPosting      = "job_posting"
	KindJobApplication  = "job_application"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordEntityCreated(kind string)
	RecordAuthFailure(reason string)
	RecordRateLimited(scope string)
	RecordSessionsPurged(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	entities       *prometheus.CounterVec
	authFailures   *prometheus.CounterVec
	rateLimited    *prometheus.CounterVec
	sessionsPurged prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workmatch_http_requests_total",
			Help: "ルート・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "workmatch_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workmatch_entities_created_total",
			Help: "種別ごとの作成エンティティ数",
		}, []string{"kind"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workmatch_auth_failures_total",
			Help: "認証失敗の合計数",
		}, []string{"reason"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workmatch_rate_limited_total",
			Help: "レート制限で拒否されたリクエスト数",
		}, []string{"scope"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workmatch_sessions_purged_total",
			Help: "クリーンアップで削除された期限切れセッション数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.entities,
		c.authFailures,
		c.rateLimited,
		c.sessionsPurged,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの結果と処理時間を記録する。
// routeにはURLではなくルートパターンを渡す。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordEntityCreated はエンティティ作成を記録する。
func (c *Collector) RecordEntityCreated(kind string) {
	c.entities.WithLabelValues(kind).Inc()
}

// RecordAuthFailure は認証失敗を記録する。
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

// RecordRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimited(scope string) {
	c.rateLimited.WithLabelValues(scope).Inc()
}

// RecordSessionsPurged は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
}

// NopCollector は何も記録しないMetricsCollector。
type NopCollector struct{}

func (NopCollector) RecordHTTPRequest(string, string, int, time.Duration) {}
func (NopCollector) RecordEntityCreated(string)                          {}
func (NopCollector) RecordAuthFailure(string)                            {}
func (NopCollector) RecordRateLimited(string)                            {}
func (NopCollector) RecordSessionsPurged(int64)                          {}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
