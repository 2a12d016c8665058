package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/book"
	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
)

// PublishBookUseCase 图书上架用例
// 设计说明:
// 1. 图书、首条价格记录、库存记录在同一个事务里创建,不会出现"有书没价"的半成品
// 2. 价格通过价格账本写入,和后续调价走同一套规则
type PublishBookUseCase struct {
	books     book.Repository
	prices    *price.Ledger
	inventory inventory.Repository
	tx        shared.Transactor
	cache     SnapshotCache
	now       shared.Clock
	logger    *zap.Logger
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(
	books book.Repository,
	prices *price.Ledger,
	inventoryRepo inventory.Repository,
	tx shared.Transactor,
	cache SnapshotCache,
	logger *zap.Logger,
) *PublishBookUseCase {
	return &PublishBookUseCase{
		books:     books,
		prices:    prices,
		inventory: inventoryRepo,
		tx:        tx,
		cache:     cache,
		now:       shared.SystemClock,
		logger:    logger,
	}
}

// WithClock 替换时间来源
func (uc *PublishBookUseCase) WithClock(clock shared.Clock) *PublishBookUseCase {
	uc.now = clock
	return uc
}

// PublishBookRequest 上架请求DTO
type PublishBookRequest struct {
	ISBN             string
	Title            string
	PublicationYear  int
	UnitPrice        decimal.Decimal
	InitialStock     int
	ReorderThreshold int
}

// Execute 执行上架用例
func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*BookSnapshot, error) {
	now := uc.now()

	b, err := book.NewBook(req.ISBN, req.Title, req.PublicationYear, now)
	if err != nil {
		return nil, err
	}
	if err := price.ValidateUnitPrice(req.UnitPrice); err != nil {
		return nil, err
	}
	inv, err := inventory.NewInventory(b.ISBN, req.InitialStock, req.ReorderThreshold)
	if err != nil {
		return nil, err
	}

	var record *price.Record
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.books.Create(txCtx, b); err != nil {
			return err
		}
		// SetPrice检测到ctx中已有事务,会加入当前事务
		r, err := uc.prices.SetPrice(txCtx, b.ISBN, req.UnitPrice, now)
		if err != nil {
			return err
		}
		record = r
		return uc.inventory.Create(txCtx, inv)
	})
	if err != nil {
		return nil, err
	}

	// 同一ISBN可能有"未上架"时缓存的空结果
	if err := uc.cache.Invalidate(ctx, b.ISBN); err != nil {
		uc.logger.Warn("删除图书快照缓存失败", zap.String("isbn", b.ISBN), zap.Error(err))
	}

	uc.logger.Info("图书上架",
		zap.String("isbn", b.ISBN),
		zap.String("unit_price", record.UnitPrice.StringFixed(2)),
		zap.Int("stock", inv.Quantity),
	)
	return newSnapshot(b, record, inv, now), nil
}
