// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 日付ウィンドウの取得元（ティア）。
const (
	TierCache    = "cache"
	TierSnapshot = "snapshot"
	TierLive     = "live"
)

// キャッシュ参照の結果。
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ウィンドウ組み立て、ワーカー、HTTP層から利用する。
type MetricsCollector interface {
	RecordDayView(mode string)
	RecordWindowTier(tier string)
	RecordWindowFetch(duration time.Duration)
	RecordCacheRequest(result string)
	RecordSnapshotBuilt(country string)
	RecordSnapshotFailure(country string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	dayViews         *prometheus.CounterVec
	windowTier       *prometheus.CounterVec
	windowFetch      prometheus.Histogram
	cacheRequests    *prometheus.CounterVec
	snapshotsBuilt   prometheus.Counter
	snapshotFailures prometheus.Counter
	httpStatus       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		dayViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dayline_day_views_total",
			Help: "モード別の日付ビュー解決回数",
		}, []string{"mode"}),
		windowTier: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dayline_window_tier_total",
			Help: "取得元ティア別のバケット取得数",
		}, []string{"tier"}),
		windowFetch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dayline_window_fetch_seconds",
			Help:    "3日分ウィンドウの組み立て時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dayline_cache_requests_total",
			Help: "結果別のバケットキャッシュ参照数",
		}, []string{"result"}),
		snapshotsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dayline_snapshots_built_total",
			Help: "作成したスナップショットの合計数",
		}),
		snapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dayline_snapshot_failures_total",
			Help: "スナップショット作成失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dayline_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.dayViews,
		c.windowTier,
		c.windowFetch,
		c.cacheRequests,
		c.snapshotsBuilt,
		c.snapshotFailures,
		c.httpStatus,
	)

	return c
}

// RecordDayView は日付ビューの解決を記録する。modeは "strict" または "continuity"。
func (c *Collector) RecordDayView(mode string) {
	c.dayViews.WithLabelValues(mode).Inc()
}

// RecordWindowTier はバケットの取得元ティアを記録する。
func (c *Collector) RecordWindowTier(tier string) {
	c.windowTier.WithLabelValues(tier).Inc()
}

// RecordWindowFetch はウィンドウ組み立ての所要時間を記録する。
func (c *Collector) RecordWindowFetch(duration time.Duration) {
	c.windowFetch.Observe(duration.Seconds())
}

// RecordCacheRequest はキャッシュ参照の結果を記録する。
func (c *Collector) RecordCacheRequest(result string) {
	c.cacheRequests.WithLabelValues(result).Inc()
}

// RecordSnapshotBuilt はスナップショット作成を記録する。
func (c *Collector) RecordSnapshotBuilt(country string) {
	c.snapshotsBuilt.Inc()
}

// RecordSnapshotFailure はスナップショット作成失敗を記録する。
func (c *Collector) RecordSnapshotFailure(country string) {
	c.snapshotFailures.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
