// Package metrics 提供基于Prometheus的指标收集
//
// 指标分两类：
//   - HTTP指标：由middleware.Metrics()统一记录（请求数、耗时、处理中请求数）
//   - 业务指标：由用例在事务提交后记录（结算、购物车、评论、订单状态、事件发布）
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds）。
// 标签只使用有限取值（method、route、result、op），不要用user_id、book_id等高基数值。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookhub"

var (
	once sync.Once

	// HTTPRequestsTotal HTTP请求总数，标签：method、route、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时，标签：method、route
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// CheckoutsTotal 结算次数，标签：result（success/empty_cart/insufficient_stock/...）
	CheckoutsTotal *prometheus.CounterVec

	// CheckoutDuration 结算事务耗时
	CheckoutDuration prometheus.Histogram

	// CartMutationsTotal 购物车变更次数，标签：op（add/update/remove/abandon）
	CartMutationsTotal *prometheus.CounterVec

	// ReviewMutationsTotal 评论变更次数，标签：op（create/update/delete/like/unlike）
	ReviewMutationsTotal *prometheus.CounterVec

	// OrderTransitionsTotal 订单状态流转次数，标签：from、to
	OrderTransitionsTotal *prometheus.CounterVec

	// EventsPublishedTotal 领域事件发布次数，标签：routing_key、result
	EventsPublishedTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标到默认Registry，重复调用是安全的
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		},
	)

	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "购物车结算次数",
		},
		[]string{"result"},
	)

	// 结算持有多行锁，桶下限比普通请求更细
	CheckoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_seconds",
			Help:      "结算事务耗时（秒）",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	CartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "购物车变更次数",
		},
		[]string{"op"},
	)

	ReviewMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_mutations_total",
			Help:      "评论及点赞变更次数",
		},
		[]string{"op"},
	)

	OrderTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "订单状态流转次数",
		},
		[]string{"from", "to"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "领域事件发布次数",
		},
		[]string{"routing_key", "result"},
	)
}

// IncCounterVec 递增CounterVec（未初始化时忽略，单元测试无需注册指标）
func IncCounterVec(counter *prometheus.CounterVec, labels ...string) {
	if counter == nil {
		return
	}
	counter.WithLabelValues(labels...).Inc()
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值
func ObserveHistogramVec(histogram *prometheus.HistogramVec, value float64, labels ...string) {
	if histogram == nil {
		return
	}
	histogram.WithLabelValues(labels...).Observe(value)
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Dec()
}
