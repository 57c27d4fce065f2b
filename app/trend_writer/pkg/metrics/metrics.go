package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trend_writer"

// 抓取结果标签
const (
	ResultOK     = "ok"
	ResultEmpty  = "empty"
	ResultFailed = "failed"
)

// Metrics 热点子系统的 Prometheus 指标，nil 时所有方法为空操作
type Metrics struct {
	gatherer prometheus.Gatherer

	ScrapeTotal    *prometheus.CounterVec
	ScrapeDuration *prometheus.HistogramVec
	CacheLookups   *prometheus.CounterVec
	FallbackTotal  prometheus.Counter
}

// New 创建并注册指标，reg 为 nil 时使用独立的 Registry
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		ScrapeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_total",
			Help:      "Scrape attempts by source and result",
		}, []string{"source", "result"}),
		ScrapeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Scrape latency by source",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"source"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Trend cache lookups by outcome",
		}, []string{"outcome"}),
		FallbackTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "static_fallback_total",
			Help:      "Requests answered with the static trend list",
		}),
	}
}

// ObserveScrape 记录一次抓取
func (m *Metrics) ObserveScrape(source, result string, seconds float64) {
	if m == nil {
		return
	}
	m.ScrapeTotal.WithLabelValues(source, result).Inc()
	m.ScrapeDuration.WithLabelValues(source).Observe(seconds)
}

// CacheHit 缓存命中
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss 缓存未命中或已过期
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// StaticFallback 请求层使用了静态热点
func (m *Metrics) StaticFallback() {
	if m == nil {
		return
	}
	m.FallbackTotal.Inc()
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
