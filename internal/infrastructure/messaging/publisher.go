// Package messaging 订单事件发布(RabbitMQ)
package messaging

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/application/order"
	"github.com/xiebiao/bookstore-ledger/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
	"github.com/xiebiao/bookstore-ledger/pkg/metrics"
)

// ExchangeType 订单事件使用topic exchange,消费者按 order.* 订阅
const ExchangeType = "topic"

// Sender 底层发送接口,*mq.Publisher 实现了它
type Sender interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Exchange() string
}

// EventPublisher 订单事件发布器
//
// 设计说明:
// 1. 事件在事务提交之后发布,发送失败不影响订单结果(至多丢事件,不会丢订单)
// 2. 每次发送有独立的超时,不会拖慢下单响应
// 3. 熔断器:Broker不可用时快速跳过,恢复后自动探测
type EventPublisher struct {
	sender  Sender
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

var _ order.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher 创建事件发布器
func NewEventPublisher(sender Sender, timeout time.Duration, logger *zap.Logger) *EventPublisher {
	metrics.InitMetrics()
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	breaker := circuitbreaker.New("mq-"+sender.Exchange(), circuitbreaker.Config{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		Interval:    time.Minute,
		ReadyToTrip: func(c circuitbreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn("消息队列熔断器状态变化",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})
	return &EventPublisher{sender: sender, breaker: breaker, timeout: timeout, logger: logger}
}

// Publish 发布事件
func (p *EventPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	// 请求结束不应取消已经提交的订单的事件
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err := p.breaker.Execute(sendCtx, func(ctx context.Context) error {
		return p.sender.Publish(ctx, routingKey, event)
	})

	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = "rejected"
	default:
		result = "failure"
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange":    p.sender.Exchange(),
		"routing_key": routingKey,
		"result":      result,
	})

	if err != nil {
		return apperrors.WithCode(err, apperrors.ErrCodeMQError, "发布事件失败")
	}
	return nil
}
