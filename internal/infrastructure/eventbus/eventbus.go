// Package eventbus 把RabbitMQ发布包在熔断器后面
//
// 设计说明:
// 1. 领域事件(下单、库存低、采购单开立/确认)是通知性质的,
//    broker挂了不能连累结账主流程
// 2. 连续发布失败时熔断器打开,后续发布直接快速失败,
//    避免每次结账都等TCP超时
// 3. MQ未启用时Bus为nop,调用方无需判空
package eventbus

import (
	"log"

	"github.com/xiebiao/bookmall/pkg/circuitbreaker"
	"github.com/xiebiao/bookmall/pkg/metrics"
	"github.com/xiebiao/bookmall/pkg/mq"
)

// Publisher 事件发布接口(应用层依赖此接口,便于测试注入fake)
type Publisher interface {
	Publish(routingKey string, message interface{}) error
}

// Bus 熔断保护的事件总线
type Bus struct {
	publisher *mq.Publisher
	breaker   *circuitbreaker.CircuitBreaker
	exchange  string
}

// New 创建事件总线
func New(publisher *mq.Publisher, exchange string) *Bus {
	cb := circuitbreaker.NewCircuitBreaker("mq-publisher", circuitbreaker.Config{})

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("⚡ 熔断器状态变化: %s %s → %s", name, from, to)
		if metrics.CircuitBreakerState != nil {
			metrics.SetGaugeVec(metrics.CircuitBreakerState,
				map[string]string{"name": name}, float64(to))
		}
	})

	return &Bus{
		publisher: publisher,
		breaker:   cb,
		exchange:  exchange,
	}
}

// NewNop 创建空事件总线(MQ未启用时使用)
func NewNop() *Bus {
	return &Bus{}
}

// Publish 发布事件(尽力而为:失败只记日志,不向上传播)
func (b *Bus) Publish(routingKey string, message interface{}) error {
	if b.publisher == nil {
		return nil
	}

	err := b.breaker.Execute(func() error {
		return b.publisher.Publish(routingKey, message)
	})

	if metrics.CircuitBreakerRequests != nil {
		result := "success"
		if err == circuitbreaker.ErrOpenState {
			result = "rejected"
		} else if err != nil {
			result = "failure"
		}
		metrics.IncCounterVec(metrics.CircuitBreakerRequests,
			map[string]string{"name": "mq-publisher", "result": result})
	}

	if err != nil {
		log.Printf("⚠️ 事件发布失败: routing_key=%s err=%v", routingKey, err)
		return err
	}

	if metrics.MessagesPublishedTotal != nil {
		metrics.IncCounterVec(metrics.MessagesPublishedTotal,
			map[string]string{"exchange": b.exchange, "routing_key": routingKey})
	}

	return nil
}

// Close 关闭底层连接
func (b *Bus) Close() error {
	if b.publisher != nil {
		return b.publisher.Close()
	}
	return nil
}
