package inventory

import (
	"context"
	"time"
)

// Repository 库存仓储接口
type Repository interface {
	// Create 创建库存记录
	Create(ctx context.Context, inv *Inventory) error

	// FindByISBN 普通查询(不加锁)
	FindByISBN(ctx context.Context, isbn string) (*Inventory, error)

	// LockByISBN 悲观锁查询(SELECT ... FOR UPDATE),必须在事务中调用
	LockByISBN(ctx context.Context, isbn string) (*Inventory, error)

	// AdjustReserved 条件更新预留数量
	// delta>0: WHERE quantity - quantity_reserved >= delta
	// delta<0: WHERE quantity_reserved + delta >= 0
	// 条件不满足返回ErrGuardRejected
	AdjustReserved(ctx context.Context, isbn string, delta int) error

	// AddQuantity 增加在库数量并记录补货时间
	AddQuantity(ctx context.Context, isbn string, added int, restockedAt time.Time) error

	// CreateLog 写库存变更日志
	CreateLog(ctx context.Context, log *Log) error

	// ListLogs 最近的变更日志(时间倒序)
	ListLogs(ctx context.Context, isbn string, limit int) ([]*Log, error)
}
