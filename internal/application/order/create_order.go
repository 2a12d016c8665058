// Package order 订单用例:下单协调器、取消、改地址、状态流转、查询
package order

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/address"
	"github.com/xiebiao/bookstore-ledger/internal/domain/book"
	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
	"github.com/xiebiao/bookstore-ledger/pkg/metrics"
	"github.com/xiebiao/bookstore-ledger/pkg/saga"
	"github.com/xiebiao/bookstore-ledger/pkg/tracing"
)

const tracerName = "bookstore-ledger/order"

// CreateOrderUseCase 下单协调器
// 教学要点:这是整个项目最核心的用例
//
// 一次下单 = 一个数据库事务:
//  1. 校验入参(空明细、数量<=0、重复ISBN)
//  2. 地址归属校验,得到订单主人
//  3. 逐项查询下单时刻的生效价格
//  4. 按ISBN字典序锁库存行,再逐项预留(Saga步骤,失败时逆序释放)
//  5. 写订单和明细(明细引用第3步的价格记录)
//  6. 提交
//
// 任何一步失败,库存和订单表都和调用前完全一样。
// 并发冲突(死锁/锁等待超时)整体重试,每次尝试有独立的超时。
type CreateOrderUseCase struct {
	orders    order.Repository
	guard     *address.OwnershipGuard
	prices    *price.Ledger
	inventory *inventory.Ledger
	tx        shared.Transactor
	events    EventPublisher
	snapshots SnapshotInvalidator
	retry     retryer
	now       shared.Clock
	logger    *zap.Logger
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orders order.Repository,
	guard *address.OwnershipGuard,
	prices *price.Ledger,
	inventoryLedger *inventory.Ledger,
	tx shared.Transactor,
	events EventPublisher,
	snapshots SnapshotInvalidator,
	opts Options,
	logger *zap.Logger,
) *CreateOrderUseCase {
	metrics.InitMetrics()
	return &CreateOrderUseCase{
		orders:    orders,
		guard:     guard,
		prices:    prices,
		inventory: inventoryLedger,
		tx:        tx,
		events:    events,
		snapshots: snapshots,
		retry:     retryer{opts: opts, logger: logger},
		now:       shared.SystemClock,
		logger:    logger,
	}
}

// WithClock 替换时间来源(价格按这个时间解析)
func (uc *CreateOrderUseCase) WithClock(clock shared.Clock) *CreateOrderUseCase {
	uc.now = clock
	return uc
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Actor             Actor
	ShippingAddressID uint
	BillingAddressID  uint
	Items             []CreateOrderItem // 顺序有意义:库存不足时报告第一个无法满足的图书
}

// CreateOrderItem 下单明细
type CreateOrderItem struct {
	ISBN     string
	Quantity int
}

// Execute 执行下单
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateOrder",
		attribute.Int("order.items", len(req.Items)),
		attribute.Int64("order.shipping_address_id", int64(req.ShippingAddressID)),
	)
	defer span.End()

	created, err := uc.execute(ctx, req)
	metrics.ObserveHistogram(metrics.OrderCreationDuration, time.Since(start).Seconds())
	if err != nil {
		tracing.RecordError(span, err)
		metrics.IncCounterVec(metrics.OrdersFailedTotal, map[string]string{"reason": failureReason(err)})
		return nil, err
	}

	metrics.IncCounter(metrics.OrdersCreatedTotal)
	span.SetAttributes(attribute.String("order.no", created.OrderNo))
	return created, nil
}

func (uc *CreateOrderUseCase) execute(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	items, err := normalizeItems(req.Items)
	if err != nil {
		return nil, err
	}
	req.Items = items

	var created *order.Order
	err = uc.retry.do(ctx, "create_order", func(attemptCtx context.Context) error {
		o, err := uc.attempt(attemptCtx, req)
		if err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		uc.logger.Info("下单失败",
			zap.Uint("shipping_address_id", req.ShippingAddressID),
			zap.Uint("billing_address_id", req.BillingAddressID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.afterCommit(ctx, created)
	return created, nil
}

// attempt 一次完整的下单事务
func (uc *CreateOrderUseCase) attempt(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	now := uc.now()
	orderNo := order.GenerateOrderNo(now)

	var created *order.Order
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		ownerID, err := uc.guard.Validate(txCtx, req.ShippingAddressID, req.BillingAddressID)
		if err != nil {
			return err
		}
		if err := req.Actor.authorizeOwner(ownerID); err != nil {
			return err
		}

		// 价格在预留之前全部解析:任何一本没有价格,整单失败且没有任何写入
		items := make([]order.Item, 0, len(req.Items))
		isbns := make([]string, 0, len(req.Items))
		for _, it := range req.Items {
			record, err := uc.prices.CurrentPrice(txCtx, it.ISBN, now)
			if err != nil {
				return err
			}
			items = append(items, order.Item{
				ISBN:      it.ISBN,
				PriceID:   record.ID,
				UnitPrice: record.UnitPrice,
				Quantity:  it.Quantity,
			})
			isbns = append(isbns, it.ISBN)
		}

		if _, err := uc.inventory.Lock(txCtx, isbns); err != nil {
			return err
		}

		reservations := saga.NewSaga(0,
			saga.WithLogger(uc.logger),
			saga.WithCompensateHook(compensationHook),
		)
		for _, it := range req.Items {
			it := it
			reservations.AddStep("reserve "+it.ISBN,
				func(ctx context.Context) error {
					return uc.inventory.Reserve(ctx, it.ISBN, it.Quantity, orderNo)
				},
				func(ctx context.Context) error {
					return uc.inventory.Release(ctx, it.ISBN, it.Quantity, orderNo)
				},
			)
		}
		if err := reservations.Execute(txCtx); err != nil {
			return err
		}

		o, err := order.NewOrder(orderNo, ownerID, req.ShippingAddressID, req.BillingAddressID, items, now)
		if err != nil {
			return err
		}
		if err := uc.orders.Create(txCtx, o); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// afterCommit 提交后的附带动作,失败不影响下单结果
func (uc *CreateOrderUseCase) afterCommit(ctx context.Context, o *order.Order) {
	if err := uc.snapshots.Invalidate(ctx, isbnsOf(o.Items)...); err != nil {
		uc.logger.Warn("删除图书快照缓存失败", zap.String("order_no", o.OrderNo), zap.Error(err))
	}
	if err := uc.events.Publish(ctx, RoutingKeyOrderCreated, newOrderCreatedEvent(o)); err != nil {
		uc.logger.Warn("发布下单事件失败", zap.String("order_no", o.OrderNo), zap.Error(err))
	}

	uc.logger.Info("下单成功",
		zap.Uint("order_id", o.ID),
		zap.String("order_no", o.OrderNo),
		zap.Uint("owner_id", o.OwnerID),
		zap.String("total", o.Total.StringFixed(2)),
		zap.Int("items", len(o.Items)),
	)
}

// normalizeItems 规范化ISBN并校验明细
// 重复的ISBN不合并,直接拒绝
func normalizeItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, order.ErrInvalidOrderItems
	}

	out := make([]CreateOrderItem, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, order.ErrInvalidQuantity
		}
		isbn := book.NormalizeISBN(it.ISBN)
		if !book.IsValidISBN(isbn) {
			return nil, book.ErrInvalidISBN
		}
		if _, dup := seen[isbn]; dup {
			return nil, order.ErrDuplicateItem
		}
		seen[isbn] = struct{}{}
		out[i] = CreateOrderItem{ISBN: isbn, Quantity: it.Quantity}
	}
	return out, nil
}

func compensationHook(_ string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.IncCounterVec(metrics.ReservationCompensationsTotal, map[string]string{"result": result})
}

// failureReason 失败原因(指标标签,取值有限)
func failureReason(err error) string {
	code := apperrors.GetAppError(err).Code
	switch {
	case code == apperrors.ErrCodeInvalidParams:
		return "validation"
	case code == apperrors.ErrCodeAddressOwnerMismatch:
		return "constraint"
	case code == apperrors.ErrCodeInsufficientStock:
		return "insufficient_stock"
	case code == apperrors.ErrCodeConcurrencyConflict:
		return "conflict"
	case code == apperrors.ErrCodeTimeout:
		return "timeout"
	case code == apperrors.ErrCodeForbidden:
		return "forbidden"
	case code >= apperrors.ErrCodeNotFound && code < apperrors.ErrCodeNotFound+100:
		return "not_found"
	default:
		return "internal"
	}
}
