package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/book"
	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
)

// RestockUseCase 补货用例
type RestockUseCase struct {
	inventory *inventory.Ledger
	cache     SnapshotCache
	logger    *zap.Logger
}

// NewRestockUseCase 创建补货用例
func NewRestockUseCase(inventoryLedger *inventory.Ledger, cache SnapshotCache, logger *zap.Logger) *RestockUseCase {
	return &RestockUseCase{inventory: inventoryLedger, cache: cache, logger: logger}
}

// RestockRequest 补货请求
type RestockRequest struct {
	ISBN        string
	Added       int
	RestockedAt time.Time // 零值表示当前时间
	Reference   string    // 入库单号等,写入库存日志
}

// Execute 执行补货
func (uc *RestockUseCase) Execute(ctx context.Context, req RestockRequest) (*inventory.Inventory, error) {
	isbn := book.NormalizeISBN(req.ISBN)
	ref := req.Reference
	if ref == "" {
		ref = "restock"
	}

	inv, err := uc.inventory.Restock(ctx, isbn, req.Added, req.RestockedAt, ref)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Invalidate(ctx, isbn); err != nil {
		uc.logger.Warn("删除图书快照缓存失败", zap.String("isbn", isbn), zap.Error(err))
	}
	return inv, nil
}

// InventoryLogsUseCase 库存变更日志查询
type InventoryLogsUseCase struct {
	inventory *inventory.Ledger
}

// NewInventoryLogsUseCase 创建日志查询用例
func NewInventoryLogsUseCase(inventoryLedger *inventory.Ledger) *InventoryLogsUseCase {
	return &InventoryLogsUseCase{inventory: inventoryLedger}
}

// Execute 最近limit条日志
func (uc *InventoryLogsUseCase) Execute(ctx context.Context, isbn string, limit int) ([]*inventory.Log, error) {
	return uc.inventory.Logs(ctx, book.NormalizeISBN(isbn), limit)
}
