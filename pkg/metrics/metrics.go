// Package metrics 提供基于Prometheus的指标收集框架
//
// 核心概念：
// - **Counter（计数器）**：只增不减的累计值（请求总数、下单总数）
// - **Gauge（仪表盘）**：可增可减的瞬时值（处理中的请求数）
// - **Histogram（直方图）**：观测值的分布，自动计算分位数（耗时、金额）
//
// 指标命名规范：
// - Counter以`_total`结尾：checkout_total、orders_cancelled_total
// - Histogram以单位结尾：http_request_duration_seconds、order_amount_fen
// - 避免高基数标签：用result/status/method做标签，不要用user_id
//
// 使用方式：
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	metrics.CheckoutTotal.With(prometheus.Labels{"result": "success"}).Inc()
//	metrics.OrderAmount.Observe(float64(order.Total))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/v1/orders）、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 结账与订单业务指标

	// CheckoutTotal 结账请求总数（Counter）
	// 标签：result（success/insufficient_stock/empty_cart/payment_expired/failure）
	CheckoutTotal *prometheus.CounterVec

	// CheckoutDuration 结账事务耗时（Histogram）
	CheckoutDuration prometheus.Histogram

	// OrderAmount 成交订单金额分布（Histogram，单位：分）
	OrderAmount prometheus.Histogram

	// OrdersCancelledTotal 订单取消总数（Counter）
	OrdersCancelledTotal prometheus.Counter

	// StockShortfallsTotal 结账时命中库存不足的商品行数（Counter）
	StockShortfallsTotal prometheus.Counter

	// 补货指标

	// PurchaseOrdersOpenedTotal 新开采购单总数（Counter）
	PurchaseOrdersOpenedTotal prometheus.Counter

	// PurchaseTriggersCoalescedTotal 合并进已有采购单的补货触发数（Counter）
	PurchaseTriggersCoalescedTotal prometheus.Counter

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name（熔断器名称）、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange（交换机）、routing_key（路由键）
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数（Counter）
	// 标签：queue（队列名称）、result（success/failure）
	MessagesConsumedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，使用promauto.New*自动注册到默认Registry
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP请求耗时（秒）",
			// 1ms ~ 10s，覆盖大部分HTTP请求耗时范围
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

	// 结账与订单指标
	CheckoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_total",
			Help: "结账请求总数",
		},
		[]string{"result"},
	)

	CheckoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "checkout_duration_seconds",
			Help: "结账事务耗时（秒）",
			// 结账涉及行锁+多行扣减，比普通请求慢
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	OrderAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "order_amount_fen",
			Help: "成交订单金额分布（分）",
			// 10元 ~ 5000元
			Buckets: []float64{1000, 5000, 10000, 50000, 100000, 500000},
		},
	)

	OrdersCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "订单取消总数",
		},
	)

	StockShortfallsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_shortfalls_total",
			Help: "结账时命中库存不足的商品行数",
		},
	)

	// 补货指标
	PurchaseOrdersOpenedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_orders_opened_total",
			Help: "新开采购单总数",
		},
	)

	PurchaseTriggersCoalescedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_triggers_coalesced_total",
			Help: "合并进已有采购单的补货触发数",
		},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)
}

// IncCounter 递增Counter（便捷函数）
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

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
