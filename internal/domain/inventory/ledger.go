package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
)

// Ledger 库存账本(领域服务)
//
// 教学要点:防超卖的两道防线
//  1. SELECT ... FOR UPDATE 锁住库存行,再在内存里检查可售数量
//  2. UPDATE 带条件(quantity - quantity_reserved >= ?),即使锁失效也不会写出负数
//
// 每次变更都写一条库存日志,与变更处于同一事务。
type Ledger struct {
	repo   Repository
	tx     shared.Transactor
	now    shared.Clock
	logger *zap.Logger
}

// NewLedger 创建库存账本
func NewLedger(repo Repository, tx shared.Transactor, logger *zap.Logger) *Ledger {
	return &Ledger{
		repo:   repo,
		tx:     tx,
		now:    shared.SystemClock,
		logger: logger,
	}
}

// WithClock 替换时间来源
func (l *Ledger) WithClock(clock shared.Clock) *Ledger {
	l.now = clock
	return l
}

// Lock 按ISBN字典序依次锁定多行
// 教学要点:所有事务都按同一顺序加锁,两个多书订单之间就不会互相等待形成死锁
// 返回 isbn → 锁定时的库存快照
func (l *Ledger) Lock(ctx context.Context, isbns []string) (map[string]*Inventory, error) {
	sorted := uniqueSorted(isbns)
	locked := make(map[string]*Inventory, len(sorted))
	for _, isbn := range sorted {
		inv, err := l.repo.LockByISBN(ctx, isbn)
		if err != nil {
			return nil, err
		}
		locked[isbn] = inv
	}
	return locked, nil
}

// Reserve 预留qty本
// ref是关联的订单号,写入库存日志
func (l *Ledger) Reserve(ctx context.Context, isbn string, qty int, ref string) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	return l.tx.Transaction(ctx, func(txCtx context.Context) error {
		inv, err := l.repo.LockByISBN(txCtx, isbn)
		if err != nil {
			return err
		}

		before := *inv
		if err := inv.Reserve(qty); err != nil {
			return err
		}

		if err := l.repo.AdjustReserved(txCtx, isbn, qty); err != nil {
			if errors.Is(err, ErrGuardRejected) {
				// 锁住之后条件更新仍未命中,只可能是并发修改,按库存不足处理
				return insufficientStock(isbn, before.Available(), qty)
			}
			return err
		}

		return l.repo.CreateLog(txCtx, newLog(ChangeTypeReserve, qty, before, *inv, ref, l.now()))
	})
}

// Release 释放qty本预留
// 释放量超过已预留量属于不变量破坏:记录error日志并返回内部错误,不做任何修改
func (l *Ledger) Release(ctx context.Context, isbn string, qty int, ref string) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	return l.tx.Transaction(ctx, func(txCtx context.Context) error {
		inv, err := l.repo.LockByISBN(txCtx, isbn)
		if err != nil {
			return err
		}

		before := *inv
		if err := inv.Release(qty); err != nil {
			l.logger.Error("库存释放越界",
				zap.String("isbn", isbn),
				zap.Int("reserved", before.QuantityReserved),
				zap.Int("release", qty),
				zap.String("ref", ref),
			)
			return err
		}

		if err := l.repo.AdjustReserved(txCtx, isbn, -qty); err != nil {
			if errors.Is(err, ErrGuardRejected) {
				l.logger.Error("库存释放条件更新未命中", zap.String("isbn", isbn), zap.Int("release", qty))
				return releaseExceedsReserved(isbn, before.QuantityReserved, qty)
			}
			return err
		}

		return l.repo.CreateLog(txCtx, newLog(ChangeTypeRelease, qty, before, *inv, ref, l.now()))
	})
}

// Restock 补货
// restockedAt为零值时取当前时间
func (l *Ledger) Restock(ctx context.Context, isbn string, added int, restockedAt time.Time, ref string) (*Inventory, error) {
	if added <= 0 {
		return nil, ErrInvalidQuantity
	}
	if restockedAt.IsZero() {
		restockedAt = l.now()
	}

	var result *Inventory
	err := l.tx.Transaction(ctx, func(txCtx context.Context) error {
		inv, err := l.repo.LockByISBN(txCtx, isbn)
		if err != nil {
			return err
		}

		before := *inv
		if err := inv.Restock(added, restockedAt); err != nil {
			return err
		}
		if err := l.repo.AddQuantity(txCtx, isbn, added, restockedAt); err != nil {
			return err
		}
		if err := l.repo.CreateLog(txCtx, newLog(ChangeTypeRestock, added, before, *inv, ref, l.now())); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("补货完成",
		zap.String("isbn", isbn),
		zap.Int("added", added),
		zap.Int("available", result.Available()),
	)
	return result, nil
}

// Get 查询库存(不加锁)
func (l *Ledger) Get(ctx context.Context, isbn string) (*Inventory, error) {
	return l.repo.FindByISBN(ctx, isbn)
}

// Logs 最近的库存变更日志
func (l *Ledger) Logs(ctx context.Context, isbn string, limit int) ([]*Log, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return l.repo.ListLogs(ctx, isbn, limit)
}

func uniqueSorted(isbns []string) []string {
	seen := make(map[string]struct{}, len(isbns))
	out := make([]string, 0, len(isbns))
	for _, isbn := range isbns {
		if _, ok := seen[isbn]; ok {
			continue
		}
		seen[isbn] = struct{}{}
		out = append(out, isbn)
	}
	sort.Strings(out)
	return out
}
