package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建订单(包含订单明细),必须和库存预留处于同一事务
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// LockByID 悲观锁查询订单(包含明细),用于状态变更
	LockByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdateStatus 更新状态及支付/发货时间
	UpdateStatus(ctx context.Context, order *Order) error

	// UpdateAddresses 更新收货/账单地址
	UpdateAddresses(ctx context.Context, order *Order) error

	// ListByOwner 查询用户的订单列表(分页)
	ListByOwner(ctx context.Context, ownerID uint, page, pageSize int) ([]*Order, int64, error)
}
