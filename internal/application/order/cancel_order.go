package order

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
	"github.com/xiebiao/bookstore-ledger/pkg/metrics"
	"github.com/xiebiao/bookstore-ledger/pkg/tracing"
)

// CancelOrderUseCase 取消订单
// 取消和释放预留在同一个事务里:不会出现"订单已取消但库存还被占着"
type CancelOrderUseCase struct {
	orders    order.Repository
	inventory *inventory.Ledger
	tx        shared.Transactor
	events    EventPublisher
	snapshots SnapshotInvalidator
	retry     retryer
	now       shared.Clock
	logger    *zap.Logger
}

// NewCancelOrderUseCase 创建取消用例
func NewCancelOrderUseCase(
	orders order.Repository,
	inventoryLedger *inventory.Ledger,
	tx shared.Transactor,
	events EventPublisher,
	snapshots SnapshotInvalidator,
	opts Options,
	logger *zap.Logger,
) *CancelOrderUseCase {
	metrics.InitMetrics()
	return &CancelOrderUseCase{
		orders:    orders,
		inventory: inventoryLedger,
		tx:        tx,
		events:    events,
		snapshots: snapshots,
		retry:     retryer{opts: opts, logger: logger},
		now:       shared.SystemClock,
		logger:    logger,
	}
}

// WithClock 替换时间来源
func (uc *CancelOrderUseCase) WithClock(clock shared.Clock) *CancelOrderUseCase {
	uc.now = clock
	return uc
}

// Execute 取消订单
func (uc *CancelOrderUseCase) Execute(ctx context.Context, actor Actor, orderID uint) (*order.Order, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CancelOrder", attribute.Int64("order.id", int64(orderID)))
	defer span.End()

	var (
		cancelled *order.Order
		released  []order.Item
	)
	err := uc.retry.do(ctx, "cancel_order", func(attemptCtx context.Context) error {
		released = nil
		return uc.tx.Transaction(attemptCtx, func(txCtx context.Context) error {
			o, err := uc.orders.LockByID(txCtx, orderID)
			if err != nil {
				return err
			}
			if err := actor.authorize(o); err != nil {
				return err
			}

			held := o.HoldsReservation()
			if err := o.Cancel(uc.now()); err != nil {
				return err
			}

			if held {
				if _, err := uc.inventory.Lock(txCtx, isbnsOf(o.Items)); err != nil {
					return err
				}
				for _, item := range o.Items {
					if err := uc.inventory.Release(txCtx, item.ISBN, item.Quantity, o.OrderNo); err != nil {
						return err
					}
				}
				released = o.Items
			}

			if err := uc.orders.UpdateStatus(txCtx, o); err != nil {
				return err
			}
			cancelled = o
			return nil
		})
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	metrics.IncCounter(metrics.OrdersCancelledTotal)
	if len(released) > 0 {
		if err := uc.snapshots.Invalidate(ctx, isbnsOf(released)...); err != nil {
			uc.logger.Warn("删除图书快照缓存失败", zap.String("order_no", cancelled.OrderNo), zap.Error(err))
		}
	}
	event := OrderCancelledEvent{
		OrderID:    cancelled.ID,
		OrderNo:    cancelled.OrderNo,
		OwnerID:    cancelled.OwnerID,
		Released:   eventItems(released),
		OccurredAt: cancelled.UpdatedAt,
	}
	if err := uc.events.Publish(ctx, RoutingKeyOrderCancelled, event); err != nil {
		uc.logger.Warn("发布取消事件失败", zap.String("order_no", cancelled.OrderNo), zap.Error(err))
	}

	uc.logger.Info("订单已取消",
		zap.Uint("order_id", cancelled.ID),
		zap.String("order_no", cancelled.OrderNo),
		zap.Int("released_items", len(released)),
	)
	return cancelled, nil
}
