package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/address"
	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
)

// UpdateAddressesUseCase 修改订单的收货/账单地址
//
// 教学要点:地址归属是一条"常驻不变量",不只是下单时的入参校验。
// 任何能改变地址引用的路径都要重新跑一遍OwnershipGuard,
// 并且新地址的主人必须还是订单原来的主人(订单不能换账户)。
type UpdateAddressesUseCase struct {
	orders order.Repository
	guard  *address.OwnershipGuard
	tx     shared.Transactor
	now    shared.Clock
	logger *zap.Logger
}

// NewUpdateAddressesUseCase 创建改地址用例
func NewUpdateAddressesUseCase(
	orders order.Repository,
	guard *address.OwnershipGuard,
	tx shared.Transactor,
	logger *zap.Logger,
) *UpdateAddressesUseCase {
	return &UpdateAddressesUseCase{
		orders: orders,
		guard:  guard,
		tx:     tx,
		now:    shared.SystemClock,
		logger: logger,
	}
}

// UpdateAddressesRequest 改地址请求
type UpdateAddressesRequest struct {
	Actor             Actor
	OrderID           uint
	ShippingAddressID uint
	BillingAddressID  uint
}

// Execute 执行改地址
func (uc *UpdateAddressesUseCase) Execute(ctx context.Context, req UpdateAddressesRequest) (*order.Order, error) {
	var updated *order.Order
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orders.LockByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}
		if err := req.Actor.authorize(o); err != nil {
			return err
		}

		ownerID, err := uc.guard.Validate(txCtx, req.ShippingAddressID, req.BillingAddressID)
		if err != nil {
			return err
		}
		if ownerID != o.OwnerID {
			return order.ErrOwnerChanged
		}

		if err := o.ChangeAddresses(req.ShippingAddressID, req.BillingAddressID, uc.now()); err != nil {
			return err
		}
		if err := uc.orders.UpdateAddresses(txCtx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("订单地址已修改",
		zap.Uint("order_id", updated.ID),
		zap.Uint("shipping_address_id", updated.ShippingAddressID),
		zap.Uint("billing_address_id", updated.BillingAddressID),
	)
	return updated, nil
}
