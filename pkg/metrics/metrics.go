// Package metrics 提供基于Prometheus的指标收集
//
// 指标类型回顾:
//   - Counter: 只增不减(订单创建数、冲突重试数)
//   - Gauge: 可增可减(正在处理的请求数)
//   - Histogram: 分布(下单耗时)
//
// 命名规范:Counter以_total结尾,Histogram以单位结尾(_seconds)。
// 标签只用有限取值的维度(reason、method),不要把ISBN、user_id当标签。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板,不是原始URL）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 订单指标

	// OrdersCreatedTotal 订单创建成功总数
	OrdersCreatedTotal prometheus.Counter

	// OrdersFailedTotal 订单创建失败总数
	// 标签：reason（validation/constraint/not_found/insufficient_stock/conflict/timeout/forbidden/internal）
	OrdersFailedTotal *prometheus.CounterVec

	// OrderCreationDuration 下单耗时(含重试)
	OrderCreationDuration prometheus.Histogram

	// OrdersCancelledTotal 订单取消总数
	OrdersCancelledTotal prometheus.Counter

	// 库存与事务指标

	// TxConflictRetriesTotal 并发冲突导致的重试次数
	TxConflictRetriesTotal prometheus.Counter

	// ReservationCompensationsTotal 预留补偿(释放)次数
	// 标签：result（success/failure）
	ReservationCompensationsTotal *prometheus.CounterVec

	// PriceChangesTotal 调价次数
	PriceChangesTotal prometheus.Counter

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签：exchange、routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有指标并注册到默认Registry
// 可重复调用,只会注册一次
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "订单创建总数",
		},
	)

	OrdersFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "订单创建失败总数",
		},
		[]string{"reason"},
	)

	// 下单是单库短事务,桶比跨服务调用时更细
	OrderCreationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_creation_duration_seconds",
			Help:    "订单创建耗时（秒）",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	OrdersCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "订单取消总数",
		},
	)

	TxConflictRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tx_conflict_retries_total",
			Help: "并发冲突(死锁/锁等待超时)重试次数",
		},
	)

	ReservationCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_compensations_total",
			Help: "库存预留补偿次数",
		},
		[]string{"result"},
	)

	PriceChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "price_changes_total",
			Help: "调价次数",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
