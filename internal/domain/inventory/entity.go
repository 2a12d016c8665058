package inventory

import "time"

// Inventory 库存记录(每本书一条)
//
// 教学要点:
// 1. Quantity是在库总量,QuantityReserved是已被订单预留的数量
// 2. 可售数量 = Quantity - QuantityReserved,任何时刻都不能为负
// 3. 下单只增加QuantityReserved,不动Quantity;发货扣减不在本模块范围内
//
// 注意:订单发货/完成后预留不会被释放,Quantity也不会减少,可售数量会一直偏小。
// 接入发货流程时,需要在同一事务里把Quantity和QuantityReserved同时减去发货数量(消耗预留)
type Inventory struct {
	ID               uint
	ISBN             string
	Quantity         int
	QuantityReserved int
	ReorderThreshold int        // 可售数量低于该值时需要补货
	LastRestockedAt  *time.Time // 从未补货为nil
	UpdatedAt        time.Time
}

// NewInventory 新书上架时的库存记录
func NewInventory(isbn string, quantity, reorderThreshold int) (*Inventory, error) {
	if quantity < 0 || reorderThreshold < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Inventory{
		ISBN:             isbn,
		Quantity:         quantity,
		ReorderThreshold: reorderThreshold,
	}, nil
}

// Available 可售数量
func (i *Inventory) Available() int {
	return i.Quantity - i.QuantityReserved
}

// Validate 校验不变量 0 <= reserved <= quantity
func (i *Inventory) Validate() error {
	if i.Quantity < 0 || i.QuantityReserved < 0 || i.QuantityReserved > i.Quantity {
		return ErrInvariantViolated
	}
	return nil
}

// CanReserve 是否可以预留qty
func (i *Inventory) CanReserve(qty int) bool {
	return qty > 0 && i.Available() >= qty
}

// Reserve 预留
func (i *Inventory) Reserve(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !i.CanReserve(qty) {
		return insufficientStock(i.ISBN, i.Available(), qty)
	}
	i.QuantityReserved += qty
	return nil
}

// Release 释放预留
// 释放量超过已预留量说明调用方记账出错,属于不变量破坏
func (i *Inventory) Release(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > i.QuantityReserved {
		return releaseExceedsReserved(i.ISBN, i.QuantityReserved, qty)
	}
	i.QuantityReserved -= qty
	return nil
}

// Restock 补货
func (i *Inventory) Restock(added int, at time.Time) error {
	if added <= 0 {
		return ErrInvalidQuantity
	}
	i.Quantity += added
	i.LastRestockedAt = &at
	return nil
}

// NeedsReorder 是否低于补货阈值
func (i *Inventory) NeedsReorder() bool {
	return i.Available() < i.ReorderThreshold
}
