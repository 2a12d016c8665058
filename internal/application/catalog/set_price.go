package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/book"
	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
	"github.com/xiebiao/bookstore-ledger/pkg/metrics"
)

// SetPriceUseCase 调价用例
// 已下单的订单持有自己的单价快照,调价不影响它们
type SetPriceUseCase struct {
	prices *price.Ledger
	cache  SnapshotCache
	logger *zap.Logger
}

// NewSetPriceUseCase 创建调价用例
func NewSetPriceUseCase(prices *price.Ledger, cache SnapshotCache, logger *zap.Logger) *SetPriceUseCase {
	metrics.InitMetrics()
	return &SetPriceUseCase{prices: prices, cache: cache, logger: logger}
}

// SetPriceRequest 调价请求
// EffectiveAt为零值表示立即生效
type SetPriceRequest struct {
	ISBN        string
	UnitPrice   decimal.Decimal
	EffectiveAt time.Time
}

// Execute 执行调价
func (uc *SetPriceUseCase) Execute(ctx context.Context, req SetPriceRequest) (*price.Record, error) {
	isbn := book.NormalizeISBN(req.ISBN)

	record, err := uc.prices.SetPrice(ctx, isbn, req.UnitPrice, req.EffectiveAt)
	if err != nil {
		return nil, err
	}
	metrics.IncCounter(metrics.PriceChangesTotal)

	if err := uc.cache.Invalidate(ctx, isbn); err != nil {
		uc.logger.Warn("删除图书快照缓存失败", zap.String("isbn", isbn), zap.Error(err))
	}
	return record, nil
}

// PriceHistoryUseCase 价格历史
type PriceHistoryUseCase struct {
	prices *price.Ledger
}

// NewPriceHistoryUseCase 创建价格历史用例
func NewPriceHistoryUseCase(prices *price.Ledger) *PriceHistoryUseCase {
	return &PriceHistoryUseCase{prices: prices}
}

// Execute 返回全部价格记录(ValidFrom倒序)
func (uc *PriceHistoryUseCase) Execute(ctx context.Context, isbn string) ([]*price.Record, error) {
	return uc.prices.History(ctx, book.NormalizeISBN(isbn))
}
