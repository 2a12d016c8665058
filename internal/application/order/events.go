package order

import (
	"context"
	"time"

	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
)

// 订单事件路由键
const (
	RoutingKeyOrderCreated   = "order.created"
	RoutingKeyOrderCancelled = "order.cancelled"
)

// EventPublisher 事件发布端口
// 事件在事务提交之后发布,发布失败只记日志(订单已经落库,不能回滚)
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// NopEventPublisher 未启用消息队列时使用
type NopEventPublisher struct{}

// Publish 丢弃事件
func (NopEventPublisher) Publish(context.Context, string, interface{}) error { return nil }

// SnapshotInvalidator 图书快照失效端口
// 预留/释放改变了可售数量,展示用的快照需要删除
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, isbns ...string) error
}

// EventItem 事件中的订单明细
type EventItem struct {
	ISBN      string `json:"isbn"`
	PriceID   uint   `json:"price_id"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// OrderCreatedEvent 下单成功事件
type OrderCreatedEvent struct {
	OrderID    uint        `json:"order_id"`
	OrderNo    string      `json:"order_no"`
	OwnerID    uint        `json:"owner_id"`
	Total      string      `json:"total"`
	Items      []EventItem `json:"items"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// OrderCancelledEvent 订单取消事件
type OrderCancelledEvent struct {
	OrderID    uint        `json:"order_id"`
	OrderNo    string      `json:"order_no"`
	OwnerID    uint        `json:"owner_id"`
	Released   []EventItem `json:"released"` // 释放的预留,未持有预留时为空
	OccurredAt time.Time   `json:"occurred_at"`
}

func eventItems(items []order.Item) []EventItem {
	out := make([]EventItem, len(items))
	for i, item := range items {
		out[i] = EventItem{
			ISBN:      item.ISBN,
			PriceID:   item.PriceID,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
		}
	}
	return out
}

func newOrderCreatedEvent(o *order.Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		OwnerID:    o.OwnerID,
		Total:      o.Total.StringFixed(2),
		Items:      eventItems(o.Items),
		OccurredAt: o.CreatedAt,
	}
}

func isbnsOf(items []order.Item) []string {
	isbns := make([]string, len(items))
	for i, item := range items {
		isbns[i] = item.ISBN
	}
	return isbns
}
