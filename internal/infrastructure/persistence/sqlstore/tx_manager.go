package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// txKey context中事务DB的key
type txKey struct{}

// TxManager 事务管理器
// 教学要点:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. ctx里已有事务时直接加入(账本方法既能单独调用,也能被下单流程组合进同一个事务)
type TxManager struct {
	db *gorm.DB
}

var _ shared.Transactor = (*TxManager)(nil)

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// 教学要点:
// 1. fn函数内的所有Repository操作都会在同一事务中执行
// 2. fn返回error时自动ROLLBACK,返回nil时自动COMMIT
// 3. COMMIT阶段的死锁/锁等待错误同样转换为ErrConcurrencyConflict
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    inv, err := inventoryRepo.LockByISBN(ctx, isbn)
//	    if err != nil {
//	        return err
//	    }
//	    return orderRepo.Create(ctx, order) // nil则提交,非nil则回滚
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 将事务DB注入到Context中
		// Repository的conn方法会从context提取事务DB
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil && !apperrors.IsAppError(err) && isConflictError(err) {
		return wrapDBError(err, "事务提交失败")
	}
	return err
}

// InTransaction ctx是否已处于事务中
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// store 仓储公共部分
type store struct {
	db *gorm.DB
}

// conn 从context获取事务DB,如果没有则使用默认DB
// 教学要点:必须使用conn(ctx)才能参与调用方的事务
func (s store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}
