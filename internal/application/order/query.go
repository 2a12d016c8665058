package order

import (
	"context"

	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
)

// GetOrderUseCase 订单详情
type GetOrderUseCase struct {
	orders order.Repository
}

// NewGetOrderUseCase 创建订单详情用例
func NewGetOrderUseCase(orders order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orders: orders}
}

// Execute 查询订单(含明细)
func (uc *GetOrderUseCase) Execute(ctx context.Context, actor Actor, orderID uint) (*order.Order, error) {
	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := actor.authorize(o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrdersUseCase 用户订单列表
type ListOrdersUseCase struct {
	orders order.Repository
}

// NewListOrdersUseCase 创建订单列表用例
func NewListOrdersUseCase(orders order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orders: orders}
}

// Execute 分页查询actor自己的订单
func (uc *ListOrdersUseCase) Execute(ctx context.Context, actor Actor, page, pageSize int) ([]*order.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return uc.orders.ListByOwner(ctx, actor.UserID, page, pageSize)
}
