package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 由domain层定义接口,infrastructure层实现
type Repository interface {
	// Create 创建图书,ISBN重复返回ErrISBNDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// LockByISBN 悲观锁查询(SELECT ... FOR UPDATE)
	// 调价时锁图书行,串行化同一本书的并发调价
	// 必须在事务中调用
	LockByISBN(ctx context.Context, isbn string) (*Book, error)
}
