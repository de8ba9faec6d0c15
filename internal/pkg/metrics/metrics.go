package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 予約結果のラベル値
const (
	ResultSuccess = "success"
)

// 座席解放の発生元ラベル値
const (
	ReleaseSourceFailure = "failure"
	ReleaseSourceExpired = "expired"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約試行の総数（result: success または失敗理由）
	BookingsTotal *prometheus.CounterVec

	// 予約フローの各段階の処理時間（stage: reserve, pricing, payment, commit）
	BookingStageDuration *prometheus.HistogramVec

	// 課金済みで台帳記録に失敗した件数
	ReconciliationRequiredTotal prometheus.Counter

	// 解放された座席数（source: failure, expired）
	SeatsReleasedTotal *prometheus.CounterVec

	// 発券済みチケット数
	TicketsIssuedTotal prometheus.Counter

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking attempts by result",
			},
			[]string{"result"},
		),
		BookingStageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "booking_stage_duration_seconds",
				Help:    "Time spent in each booking stage",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"stage"},
		),
		ReconciliationRequiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "booking_reconciliation_required_total",
				Help: "Bookings charged but not recorded in the ticket ledger",
			},
		),
		SeatsReleasedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seats_released_total",
				Help: "Total number of seat holds released",
			},
			[]string{"source"},
		),
		TicketsIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tickets_issued_total",
				Help: "Total number of tickets issued",
			},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.BookingStageDuration,
		m.ReconciliationRequiredTotal,
		m.SeatsReleasedTotal,
		m.TicketsIssuedTotal,
		m.DistributedLockDuration,
	)

	return m
}

// ObserveStage は段階の開始時刻からの経過時間を記録する
// nil レシーバでも安全に呼べる
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.BookingStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordBooking は予約試行の結果を記録する
func (m *Metrics) RecordBooking(result string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(result).Inc()
}

// RecordRelease は解放した座席数を記録する
func (m *Metrics) RecordRelease(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SeatsReleasedTotal.WithLabelValues(source).Add(float64(n))
}

// RecordTickets は発券数を記録する
func (m *Metrics) RecordTickets(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TicketsIssuedTotal.Add(float64(n))
}

// RecordReconciliation は照合が必要な予約を1件記録する
func (m *Metrics) RecordReconciliation() {
	if m == nil {
		return
	}
	m.ReconciliationRequiredTotal.Inc()
}

// ObserveLock は分散ロック操作の時間を記録する
func (m *Metrics) ObserveLock(operation string, ok bool, start time.Time) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failed"
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
