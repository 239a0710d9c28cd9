package monitor

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 指标收集器
type Metrics struct {
	fetchTotal        *prometheus.CounterVec
	fetchDuration     prometheus.Histogram
	snapshotRecords   prometheus.Gauge
	snapshotRefreshed prometheus.Gauge
	filteredRows      prometheus.Gauge
	// 缓存相关
	cacheHitTotal  *prometheus.CounterVec
	cacheMissTotal *prometheus.CounterVec
	// 渲染相关
	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
	// HTTP / 推送
	httpRequests    *prometheus.CounterVec
	wsClients       prometheus.Gauge
	natsConnected   prometheus.Gauge
	eventsPublished *prometheus.CounterVec
}

// NewMetrics 创建并注册指标收集器
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Total number of upstream snapshot fetches",
			},
			[]string{"status"}, // success, error
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "上游快照拉取耗时分布（秒）",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		snapshotRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "snapshot_records",
				Help:      "Number of records in the current snapshot",
			},
		),
		snapshotRefreshed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "snapshot_refreshed_timestamp_seconds",
				Help:      "Unix time of the last successful snapshot fetch",
			},
		),
		filteredRows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "filtered_rows",
				Help:      "最近一次过滤后的行数",
			},
		),
		cacheHitTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hit_total",
				Help:      "缓存命中总数（按缓存类型）",
			},
			[]string{"cache_type"}, // snapshot, chart
		),
		cacheMissTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_miss_total",
				Help:      "缓存未命中总数（按缓存类型）",
			},
			[]string{"cache_type"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "图表渲染耗时分布（秒）",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"kind"},
		),
		renderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_errors_total",
				Help:      "Total number of chart render errors",
			},
			[]string{"kind"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of dashboard HTTP requests",
			},
			[]string{"route", "code"},
		),
		wsClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_clients",
				Help:      "Current number of connected dashboard pages",
			},
		),
		natsConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "nats_connected",
				Help:      "NATS connection status (1=connected, 0=disconnected)",
			},
		),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of snapshot events published to NATS",
			},
			[]string{"status"},
		),
	}

	prometheus.MustRegister(
		m.fetchTotal,
		m.fetchDuration,
		m.snapshotRecords,
		m.snapshotRefreshed,
		m.filteredRows,
		m.cacheHitTotal,
		m.cacheMissTotal,
		m.renderDuration,
		m.renderErrors,
		m.httpRequests,
		m.wsClients,
		m.natsConnected,
		m.eventsPublished,
	)

	return m
}

// ObserveFetch 记录一次上游拉取
func (m *Metrics) ObserveFetch(seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.fetchTotal.WithLabelValues(status).Inc()
	m.fetchDuration.Observe(seconds)
}

// SetSnapshot 记录快照行数与刷新时间
func (m *Metrics) SetSnapshot(records int, refreshedUnix float64) {
	m.snapshotRecords.Set(float64(records))
	m.snapshotRefreshed.Set(refreshedUnix)
}

func (m *Metrics) SetFilteredRows(count int) {
	m.filteredRows.Set(float64(count))
}

func (m *Metrics) IncCacheHit(cacheType string) {
	m.cacheHitTotal.WithLabelValues(cacheType).Inc()
}

func (m *Metrics) IncCacheMiss(cacheType string) {
	m.cacheMissTotal.WithLabelValues(cacheType).Inc()
}

func (m *Metrics) ObserveRender(kind string, seconds float64, err error) {
	m.renderDuration.WithLabelValues(kind).Observe(seconds)
	if err != nil {
		m.renderErrors.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncHTTPRequest(route, code string) {
	m.httpRequests.WithLabelValues(route, code).Inc()
}

func (m *Metrics) SetWebSocketClients(count int) {
	m.wsClients.Set(float64(count))
}

// SetNATSConnected 设置NATS连接状态
func (m *Metrics) SetNATSConnected(connected bool) {
	if connected {
		m.natsConnected.Set(1)
	} else {
		m.natsConnected.Set(0)
	}
}

func (m *Metrics) IncEventsPublished(status string) {
	m.eventsPublished.WithLabelValues(status).Inc()
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics 获取全局指标收集器
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = NewMetrics("liquidity_dashboard")
	})
	return globalMetrics
}

// InitMetrics 初始化指标收集器（供main使用）
func InitMetrics() {
	GetMetrics()
}
