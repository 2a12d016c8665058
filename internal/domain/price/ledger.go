package price

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/book"
	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
)

// Ledger 价格账本(领域服务)
// 职责:
// 1. 查询某一时刻的生效价格
// 2. 原子地调价,保证同一本书的有效期区间互不重叠
type Ledger struct {
	repo   Repository
	books  book.Repository
	tx     shared.Transactor
	now    shared.Clock
	logger *zap.Logger
}

// NewLedger 创建价格账本
func NewLedger(repo Repository, books book.Repository, tx shared.Transactor, logger *zap.Logger) *Ledger {
	return &Ledger{
		repo:   repo,
		books:  books,
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

// CurrentPrice 查询asOf时刻的生效价格
// 错误:
// - 没有记录覆盖asOf → ErrPriceNotFound
// - 多条记录同时覆盖 → ErrOverlappingPrices(内部错误,记录日志)
//
// 区间按UTC存储,asOf先转成UTC再比较;SQLite按文本比较时间,时区不同会比错
func (l *Ledger) CurrentPrice(ctx context.Context, isbn string, asOf time.Time) (*Record, error) {
	asOf = asOf.UTC()
	records, err := l.repo.FindCovering(ctx, isbn, asOf)
	if err != nil {
		return nil, err
	}

	switch len(records) {
	case 0:
		return nil, priceNotFound(isbn, asOf)
	case 1:
		return records[0], nil
	default:
		l.logger.Error("价格区间重叠",
			zap.String("isbn", isbn),
			zap.Time("as_of", asOf),
			zap.Int("records", len(records)),
		)
		return nil, overlapping(isbn, len(records))
	}
}

// SetPrice 调价
// 在一个事务内:
// 1. 锁图书行(串行化同一本书的并发调价)
// 2. 关闭当前开放记录,valid_until = effectiveAt
// 3. 插入从effectiveAt开始的新开放记录
//
// effectiveAt为零值时取当前时间
func (l *Ledger) SetPrice(ctx context.Context, isbn string, unitPrice decimal.Decimal, effectiveAt time.Time) (*Record, error) {
	if err := ValidateUnitPrice(unitPrice); err != nil {
		return nil, err
	}
	if effectiveAt.IsZero() {
		effectiveAt = l.now()
	}
	effectiveAt = effectiveAt.UTC().Truncate(time.Millisecond)

	var created *Record
	err := l.tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := l.books.LockByISBN(txCtx, isbn); err != nil {
			return err
		}

		latest, err := l.repo.FindLatest(txCtx, isbn)
		switch {
		case errors.Is(err, ErrPriceNotFound):
			// 第一条价格
		case err != nil:
			return err
		default:
			if !latest.CanBeSucceededAt(effectiveAt) {
				return ErrInvalidEffectiveAt
			}
			if latest.IsOpen() {
				if err := l.repo.CloseOpen(txCtx, latest.ID, effectiveAt); err != nil {
					return err
				}
			}
		}

		record, err := NewRecord(isbn, unitPrice, effectiveAt)
		if err != nil {
			return err
		}
		if err := l.repo.Create(txCtx, record); err != nil {
			return err
		}
		created = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("价格已更新",
		zap.String("isbn", isbn),
		zap.String("unit_price", unitPrice.StringFixed(2)),
		zap.Time("effective_at", effectiveAt),
		zap.Uint("price_id", created.ID),
	)
	return created, nil
}

// History 价格历史(ValidFrom倒序)
func (l *Ledger) History(ctx context.Context, isbn string) ([]*Record, error) {
	if _, err := l.books.FindByISBN(ctx, isbn); err != nil {
		return nil, err
	}
	return l.repo.ListByISBN(ctx, isbn)
}
