package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/book"
	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
)

// GetBookUseCase 查询图书快照
//
// 教学要点:Cache-Aside(旁路缓存)
//  1. 先查缓存,命中直接返回
//  2. 未命中查数据库,再写回缓存
//  3. 数据变化时删除缓存,而不是更新缓存
//
// 缓存读写失败只记日志,不影响查询结果
type GetBookUseCase struct {
	books     book.Repository
	prices    *price.Ledger
	inventory *inventory.Ledger
	cache     SnapshotCache
	now       shared.Clock
	logger    *zap.Logger
}

// NewGetBookUseCase 创建查询用例
func NewGetBookUseCase(
	books book.Repository,
	prices *price.Ledger,
	inventoryLedger *inventory.Ledger,
	cache SnapshotCache,
	logger *zap.Logger,
) *GetBookUseCase {
	return &GetBookUseCase{
		books:     books,
		prices:    prices,
		inventory: inventoryLedger,
		cache:     cache,
		now:       shared.SystemClock,
		logger:    logger,
	}
}

// WithClock 替换时间来源
func (uc *GetBookUseCase) WithClock(clock shared.Clock) *GetBookUseCase {
	uc.now = clock
	return uc
}

// Execute 执行查询
func (uc *GetBookUseCase) Execute(ctx context.Context, isbn string) (*BookSnapshot, error) {
	isbn = book.NormalizeISBN(isbn)

	cached, err := uc.cache.Get(ctx, isbn)
	if err != nil {
		uc.logger.Warn("读取图书快照缓存失败", zap.String("isbn", isbn), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	b, err := uc.books.FindByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	current, err := uc.prices.CurrentPrice(ctx, isbn, now)
	if err != nil && !errors.Is(err, price.ErrPriceNotFound) {
		return nil, err
	}

	inv, err := uc.inventory.Get(ctx, isbn)
	if err != nil && !errors.Is(err, inventory.ErrInventoryNotFound) {
		return nil, err
	}

	snapshot := newSnapshot(b, current, inv, now)
	if err := uc.cache.Set(ctx, snapshot); err != nil {
		uc.logger.Warn("写入图书快照缓存失败", zap.String("isbn", isbn), zap.Error(err))
	}
	return snapshot, nil
}
