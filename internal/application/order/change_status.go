package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// ChangeStatusUseCase 订单状态流转(支付、发货、完成)
// 取消有库存副作用,交给CancelOrderUseCase
type ChangeStatusUseCase struct {
	orders order.Repository
	cancel *CancelOrderUseCase
	tx     shared.Transactor
	now    shared.Clock
	logger *zap.Logger
}

// NewChangeStatusUseCase 创建状态流转用例
func NewChangeStatusUseCase(
	orders order.Repository,
	cancel *CancelOrderUseCase,
	tx shared.Transactor,
	logger *zap.Logger,
) *ChangeStatusUseCase {
	return &ChangeStatusUseCase{
		orders: orders,
		cancel: cancel,
		tx:     tx,
		now:    shared.SystemClock,
		logger: logger,
	}
}

// WithClock 替换时间来源
func (uc *ChangeStatusUseCase) WithClock(clock shared.Clock) *ChangeStatusUseCase {
	uc.now = clock
	return uc
}

// Execute 把订单流转到target状态
// 发货和完成只能由管理员操作;支付由订单主人或管理员操作
func (uc *ChangeStatusUseCase) Execute(ctx context.Context, actor Actor, orderID uint, target order.OrderStatus) (*order.Order, error) {
	if target == order.OrderStatusCancelled {
		return uc.cancel.Execute(ctx, actor, orderID)
	}
	if (target == order.OrderStatusShipped || target == order.OrderStatusCompleted) && !actor.Admin {
		return nil, apperrors.ErrForbidden
	}

	var updated *order.Order
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orders.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := actor.authorize(o); err != nil {
			return err
		}

		from := o.Status
		if err := o.TransitionTo(target, uc.now()); err != nil {
			return err
		}
		if err := uc.orders.UpdateStatus(txCtx, o); err != nil {
			return err
		}

		uc.logger.Info("订单状态变更",
			zap.Uint("order_id", o.ID),
			zap.Stringer("from", from),
			zap.Stringer("to", target),
		)
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
