package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
// 教学要点:
// 1. 使用int存储(节省空间,便于索引)
// 2. String()输出稳定的英文名,用于API和事件
type OrderStatus int

const (
	OrderStatusPending   OrderStatus = 1 // 待支付
	OrderStatusPaid      OrderStatus = 2 // 已支付
	OrderStatusShipped   OrderStatus = 3 // 已发货
	OrderStatusCompleted OrderStatus = 4 // 已完成
	OrderStatusCancelled OrderStatus = 5 // 已取消
)

var statusNames = map[OrderStatus]string{
	OrderStatusPending:   "pending",
	OrderStatusPaid:      "paid",
	OrderStatusShipped:   "shipped",
	OrderStatusCompleted: "completed",
	OrderStatusCancelled: "cancelled",
}

// String 实现Stringer接口
func (s OrderStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStatus 英文名 → 状态
func ParseStatus(name string) (OrderStatus, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, ErrUnknownStatus
}

// 合法的状态转换
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusCompleted},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// Order 订单实体(聚合根)
// 教学要点:
//  1. 订单的主人由地址决定(OwnerID = 收货/账单地址的共同主人)
//  2. Items是子实体,单价是下单时价格记录的快照
//  3. Total冗余存储,由Items计算,之后不会再变
type Order struct {
	ID                uint
	OrderNo           string
	OwnerID           uint
	ShippingAddressID uint
	BillingAddressID  uint
	Status            OrderStatus
	Total             decimal.Decimal
	Items             []Item
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PaidAt            *time.Time
	ShippedAt         *time.Time
}

// Item 订单明细
// PriceID指向下单时刻生效的价格记录;UnitPrice是该记录单价的拷贝,之后调价不影响
type Item struct {
	ID        uint
	OrderID   uint
	ISBN      string
	PriceID   uint
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal 小计
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder 创建待支付订单(工厂方法)
func NewOrder(orderNo string, ownerID, shippingAddressID, billingAddressID uint, items []Item, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	o := &Order{
		OrderNo:           orderNo,
		OwnerID:           ownerID,
		ShippingAddressID: shippingAddressID,
		BillingAddressID:  billingAddressID,
		Status:            OrderStatusPending,
		Items:             items,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	o.Total = o.CalculateTotal()
	return o, nil
}

// CalculateTotal Σ 单价 × 数量
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换,同时记录支付/发货时间
func (o *Order) TransitionTo(target OrderStatus, now time.Time) error {
	if !o.CanTransitionTo(target) {
		return invalidTransition(o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = now
	switch target {
	case OrderStatusPaid:
		o.PaidAt = &now
	case OrderStatusShipped:
		o.ShippedAt = &now
	}
	return nil
}

// Cancel 取消订单
func (o *Order) Cancel(now time.Time) error {
	return o.TransitionTo(OrderStatusCancelled, now)
}

// HoldsReservation 取消时是否需要释放库存预留
// 已发货/已完成的订单返回false:预留应由发货流程消耗(见inventory.Inventory),不能再释放
func (o *Order) HoldsReservation() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPaid
}

// ChangeAddresses 修改收货/账单地址
// 只允许发货前修改;归属校验由OwnershipGuard在应用层完成
func (o *Order) ChangeAddresses(shippingID, billingID uint, now time.Time) error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusPaid {
		return ErrAddressesLocked
	}
	o.ShippingAddressID = shippingID
	o.BillingAddressID = billingID
	o.UpdatedAt = now
	return nil
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.OwnerID == userID
}
