package price

import (
	"context"
	"time"
)

// Repository 价格记录仓储接口
type Repository interface {
	// Create 插入一条新记录(回填ID)
	Create(ctx context.Context, r *Record) error

	// FindCovering 查询asOf时刻生效的所有记录
	// 正常情况下最多一条,返回切片是为了让上层能发现重叠
	FindCovering(ctx context.Context, isbn string, asOf time.Time) ([]*Record, error)

	// FindLatest 按ValidFrom最新的一条记录,没有记录返回ErrPriceNotFound
	FindLatest(ctx context.Context, isbn string) (*Record, error)

	// CloseOpen 关闭开放记录(WHERE valid_until IS NULL)
	// 没有被更新的行说明记录已被并发关闭,返回ErrRecordClosed
	CloseOpen(ctx context.Context, id uint, until time.Time) error

	// ListByISBN 全部历史,ValidFrom倒序
	ListByISBN(ctx context.Context, isbn string) ([]*Record, error)
}
