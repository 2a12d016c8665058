package address

import (
	"context"
)

// Repository 地址仓储接口
type Repository interface {
	// Create 创建地址
	Create(ctx context.Context, a *Address) error

	// FindByID 根据ID查找,不存在返回ErrAddressNotFound
	FindByID(ctx context.Context, id uint) (*Address, error)

	// ListByUser 用户的全部地址(主地址在前)
	ListByUser(ctx context.Context, userID uint) ([]*Address, error)

	// LockByUser 锁定用户的全部地址行(事务内使用),串行化同一用户的地址写入
	LockByUser(ctx context.Context, userID uint) ([]*Address, error)

	// ClearPrimary 取消用户当前的主地址
	ClearPrimary(ctx context.Context, userID uint) error
}
