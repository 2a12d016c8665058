package order

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/bookstore-ledger/internal/domain/address"
	"github.com/xiebiao/bookstore-ledger/internal/domain/book"
	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/persistence/sqlstore"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
	"github.com/xiebiao/bookstore-ledger/pkg/metrics"
)

const (
	isbnX       = "9780132350884"
	isbnY       = "9780201633610"
	isbnNoPrice = "9780134685991"
)

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

var testOptions = Options{
	TxTimeout:      5 * time.Second,
	MaxRetries:     3,
	RetryBaseDelay: time.Millisecond,
}

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, event)
	return nil
}

// recordingInvalidator 记录被删除快照的ISBN
type recordingInvalidator struct {
	mu    sync.Mutex
	isbns []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, isbns ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isbns = append(r.isbns, isbns...)
	return nil
}

// flakyTx 前failures次提交前返回并发冲突(模拟死锁被数据库回滚)
type flakyTx struct {
	inner    shared.Transactor
	failures atomic.Int32
}

func (f *flakyTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.inner.Transaction(ctx, func(txCtx context.Context) error {
		if err := fn(txCtx); err != nil {
			return err
		}
		if f.failures.Add(-1) >= 0 {
			return apperrors.WithCode(fmt.Errorf("Deadlock found when trying to get lock"),
				apperrors.ErrCodeConcurrencyConflict, "并发冲突")
		}
		return nil
	})
}

type env struct {
	t         *testing.T
	ctx       context.Context
	tx        *sqlstore.TxManager
	books     book.Repository
	inventory inventory.Repository
	addresses address.Repository
	orders    order.Repository
	prices    *price.Ledger
	ledger    *inventory.Ledger
	guard     *address.OwnershipGuard
	events    *recordingPublisher
	snapshots *recordingInvalidator

	create  *CreateOrderUseCase
	cancel  *CancelOrderUseCase
	status  *ChangeStatusUseCase
	readdr  *UpdateAddressesUseCase
	get     *GetOrderUseCase
	list    *ListOrdersUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := sqlstore.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	logger := zap.NewNop()
	e := &env{
		t:         t,
		ctx:       context.Background(),
		tx:        sqlstore.NewTxManager(db),
		books:     sqlstore.NewBookRepository(db),
		inventory: sqlstore.NewInventoryRepository(db),
		addresses: sqlstore.NewAddressRepository(db),
		orders:    sqlstore.NewOrderRepository(db),
		events:    &recordingPublisher{},
		snapshots: &recordingInvalidator{},
	}
	e.prices = price.NewLedger(sqlstore.NewPriceRepository(db), e.books, e.tx, logger)
	e.ledger = inventory.NewLedger(e.inventory, e.tx, logger)
	e.guard = address.NewOwnershipGuard(e.addresses)

	e.create = e.newCreate(e.tx, testOptions)
	e.cancel = NewCancelOrderUseCase(e.orders, e.ledger, e.tx, e.events, e.snapshots, testOptions, logger)
	e.status = NewChangeStatusUseCase(e.orders, e.cancel, e.tx, logger)
	e.readdr = NewUpdateAddressesUseCase(e.orders, e.guard, e.tx, logger)
	e.get = NewGetOrderUseCase(e.orders)
	e.list = NewListOrdersUseCase(e.orders)
	return e
}

func (e *env) newCreate(tx shared.Transactor, opts Options) *CreateOrderUseCase {
	return NewCreateOrderUseCase(e.orders, e.guard, e.prices, e.ledger, tx, e.events, e.snapshots, opts, zap.NewNop()).
		WithClock(func() time.Time { return t0.Add(time.Hour) })
}

// seedBook 图书 + t0生效的价格 + 库存
func (e *env) seedBook(isbn, unitPrice string, quantity int) {
	e.t.Helper()
	b, err := book.NewBook(isbn, "Book "+isbn, 2008, t0)
	require.NoError(e.t, err)
	require.NoError(e.t, e.books.Create(e.ctx, b))
	if unitPrice != "" {
		_, err = e.prices.SetPrice(e.ctx, isbn, decimal.RequireFromString(unitPrice), t0)
		require.NoError(e.t, err)
	}
	inv, err := inventory.NewInventory(isbn, quantity, 0)
	require.NoError(e.t, err)
	require.NoError(e.t, e.inventory.Create(e.ctx, inv))
}

func (e *env) seedAddress(userID uint) uint {
	e.t.Helper()
	a, err := address.NewAddress(userID, "Marszałkowska", "10", "", "Warszawa", "00-001", "", false)
	require.NoError(e.t, err)
	require.NoError(e.t, e.addresses.Create(e.ctx, a))
	return a.ID
}

func (e *env) reserved(isbn string) int {
	e.t.Helper()
	inv, err := e.inventory.FindByISBN(e.ctx, isbn)
	require.NoError(e.t, err)
	return inv.QuantityReserved
}

func (e *env) orderCount(ownerID uint) int64 {
	e.t.Helper()
	_, total, err := e.orders.ListByOwner(e.ctx, ownerID, 1, 100)
	require.NoError(e.t, err)
	return total
}

func (e *env) placeOrder(userID, addrID uint, items ...CreateOrderItem) *order.Order {
	e.t.Helper()
	o, err := e.create.Execute(e.ctx, CreateOrderRequest{
		Actor:             Actor{UserID: userID},
		ShippingAddressID: addrID,
		BillingAddressID:  addrID,
		Items:             items,
	})
	require.NoError(e.t, err)
	return o
}

func counterValue(t *testing.T, write func(*dto.Metric) error) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, write(&m))
	return m.GetCounter().GetValue()
}

// 场景A:库存10、价格29.99,买4本成功,预留变为4,总价119.96
func TestCreateOrder_ReservesAndPrices(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	addr := e.seedAddress(1)

	o := e.placeOrder(1, addr, CreateOrderItem{ISBN: "978-0-13-235088-4", Quantity: 4})

	assert.NotZero(t, o.ID)
	assert.Equal(t, order.OrderStatusPending, o.Status)
	assert.Equal(t, uint(1), o.OwnerID)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("119.96")), "total=%s", o.Total)
	require.Len(t, o.Items, 1)
	assert.Equal(t, isbnX, o.Items[0].ISBN)
	assert.NotZero(t, o.Items[0].PriceID)
	assert.Equal(t, 4, e.reserved(isbnX))

	logs, err := e.ledger.Logs(e.ctx, isbnX, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, inventory.ChangeTypeReserve, logs[0].ChangeType)
	assert.Equal(t, o.OrderNo, logs[0].Reference)

	assert.Equal(t, []string{RoutingKeyOrderCreated}, e.events.keys)
	event, ok := e.events.events[0].(OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "119.96", event.Total)
	assert.Equal(t, []string{isbnX}, e.snapshots.isbns)

	stored, err := e.get.Execute(e.ctx, Actor{UserID: 1}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNo, stored.OrderNo)
	assert.True(t, stored.Total.Equal(o.Total))
}

// 场景B:库存10、已预留8,买5本失败,预留仍为8
func TestCreateOrder_InsufficientStock(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	require.NoError(t, e.inventory.AdjustReserved(e.ctx, isbnX, 8))
	addr := e.seedAddress(1)

	_, err := e.create.Execute(e.ctx, CreateOrderRequest{
		Actor:             Actor{UserID: 1},
		ShippingAddressID: addr,
		BillingAddressID:  addr,
		Items:             []CreateOrderItem{{ISBN: isbnX, Quantity: 5}},
	})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Contains(t, err.Error(), isbnX)
	assert.Equal(t, 8, e.reserved(isbnX))
	assert.Zero(t, e.orderCount(1))
	assert.Empty(t, e.events.keys)
}

// 场景C:[(X,3), (Y,999)],Y只有5本,整单失败,X的预留被回滚
func TestCreateOrder_PartialFailureRollsBackEverything(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	e.seedBook(isbnY, "45.00", 5)
	addr := e.seedAddress(1)

	_, err := e.create.Execute(e.ctx, CreateOrderRequest{
		Actor:             Actor{UserID: 1},
		ShippingAddressID: addr,
		BillingAddressID:  addr,
		Items: []CreateOrderItem{
			{ISBN: isbnX, Quantity: 3},
			{ISBN: isbnY, Quantity: 999},
		},
	})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Contains(t, err.Error(), isbnY, "报告第一个无法满足的图书")

	assert.Equal(t, 0, e.reserved(isbnX))
	assert.Equal(t, 0, e.reserved(isbnY))
	assert.Zero(t, e.orderCount(1))

	// 预留、补偿日志都随事务回滚
	logs, err := e.ledger.Logs(e.ctx, isbnX, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

// 场景D:收货地址属于U1、账单地址属于U2
func TestCreateOrder_AddressOwnerMismatch(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	a1 := e.seedAddress(1)
	a2 := e.seedAddress(2)

	_, err := e.create.Execute(e.ctx, CreateOrderRequest{
		Actor:             Actor{UserID: 1},
		ShippingAddressID: a1,
		BillingAddressID:  a2,
		Items:             []CreateOrderItem{{ISBN: isbnX, Quantity: 1}},
	})
	assert.ErrorIs(t, err, address.ErrAddressOwnerMismatch)
	assert.Equal(t, 0, e.reserved(isbnX))
	assert.Zero(t, e.orderCount(1))
	assert.Zero(t, e.orderCount(2))
}

func TestCreateOrder_RejectedBeforeAnyWrite(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	e.seedBook(isbnNoPrice, "", 10)
	addr := e.seedAddress(1)
	other := e.seedAddress(2)

	tests := []struct {
		name    string
		req     CreateOrderRequest
		wantErr error
	}{
		{
			name:    "空明细",
			req:     CreateOrderRequest{Actor: Actor{UserID: 1}, ShippingAddressID: addr, BillingAddressID: addr},
			wantErr: order.ErrInvalidOrderItems,
		},
		{
			name: "数量为0",
			req: CreateOrderRequest{Actor: Actor{UserID: 1}, ShippingAddressID: addr, BillingAddressID: addr,
				Items: []CreateOrderItem{{ISBN: isbnX, Quantity: 0}}},
			wantErr: order.ErrInvalidQuantity,
		},
		{
			name: "重复ISBN(格式不同也算重复)",
			req: CreateOrderRequest{Actor: Actor{UserID: 1}, ShippingAddressID: addr, BillingAddressID: addr,
				Items: []CreateOrderItem{{ISBN: isbnX, Quantity: 1}, {ISBN: "978-0132350884", Quantity: 2}}},
			wantErr: order.ErrDuplicateItem,
		},
		{
			name: "ISBN格式错误",
			req: CreateOrderRequest{Actor: Actor{UserID: 1}, ShippingAddressID: addr, BillingAddressID: addr,
				Items: []CreateOrderItem{{ISBN: "abc", Quantity: 1}}},
			wantErr: book.ErrInvalidISBN,
		},
		{
			name: "地址不存在",
			req: CreateOrderRequest{Actor: Actor{UserID: 1}, ShippingAddressID: 999, BillingAddressID: addr,
				Items: []CreateOrderItem{{ISBN: isbnX, Quantity: 1}}},
			wantErr: address.ErrAddressNotFound,
		},
		{
			name: "没有生效价格",
			req: CreateOrderRequest{Actor: Actor{UserID: 1}, ShippingAddressID: addr, BillingAddressID: addr,
				Items: []CreateOrderItem{{ISBN: isbnX, Quantity: 1}, {ISBN: isbnNoPrice, Quantity: 1}}},
			wantErr: price.ErrPriceNotFound,
		},
		{
			name: "用别人的地址下单",
			req: CreateOrderRequest{Actor: Actor{UserID: 1}, ShippingAddressID: other, BillingAddressID: other,
				Items: []CreateOrderItem{{ISBN: isbnX, Quantity: 1}}},
			wantErr: apperrors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.create.Execute(e.ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, e.reserved(isbnX))
			assert.Equal(t, 0, e.reserved(isbnNoPrice))
		})
	}
	assert.Zero(t, e.orderCount(1))
	assert.Zero(t, e.orderCount(2))
}

// 调价不影响已下单的明细
func TestCreateOrder_PriceStableAfterPriceChange(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	addr := e.seedAddress(1)

	o := e.placeOrder(1, addr, CreateOrderItem{ISBN: isbnX, Quantity: 2})
	priceID := o.Items[0].PriceID

	_, err := e.prices.SetPrice(e.ctx, isbnX, decimal.RequireFromString("35.00"), t0.Add(2*time.Hour))
	require.NoError(t, err)

	stored, err := e.get.Execute(e.ctx, Actor{UserID: 1}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, priceID, stored.Items[0].PriceID)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("29.99")))
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("59.98")))
}

// 场景E:可售10,两个并发请求各买6本,恰好一个成功
func TestCreateOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	tests := []struct {
		name     string
		requests int
		qty      int
		wantOK   int
	}{
		{"两个请求各6本", 2, 6, 1},
		{"二十个请求各1本", 20, 1, 10},
		{"四个请求各3本", 4, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.seedBook(isbnX, "29.99", 10)
			addr := e.seedAddress(1)

			// 每次取时间都前进1ms,保证订单号唯一
			var tick atomic.Int64
			create := e.newCreate(e.tx, testOptions).WithClock(func() time.Time {
				return t0.Add(time.Hour + time.Duration(tick.Add(1))*time.Millisecond)
			})

			var succeeded, insufficient atomic.Int32
			var g errgroup.Group
			for i := 0; i < tt.requests; i++ {
				g.Go(func() error {
					_, err := create.Execute(context.Background(), CreateOrderRequest{
						Actor:             Actor{UserID: 1},
						ShippingAddressID: addr,
						BillingAddressID:  addr,
						Items:             []CreateOrderItem{{ISBN: isbnX, Quantity: tt.qty}},
					})
					switch {
					case err == nil:
						succeeded.Add(1)
					case apperrors.GetAppError(err).Code == apperrors.ErrCodeInsufficientStock:
						insufficient.Add(1)
					default:
						return err
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())

			assert.Equal(t, int32(tt.wantOK), succeeded.Load())
			assert.Equal(t, int32(tt.requests-tt.wantOK), insufficient.Load())
			assert.Equal(t, tt.wantOK*tt.qty, e.reserved(isbnX))
			assert.LessOrEqual(t, e.reserved(isbnX), 10)
			assert.Equal(t, int64(tt.wantOK), e.orderCount(1))
		})
	}
}

func TestCreateOrder_RetriesConcurrencyConflict(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	addr := e.seedAddress(1)

	flaky := &flakyTx{inner: e.tx}
	flaky.failures.Store(2)
	create := e.newCreate(flaky, testOptions)

	before := counterValue(t, metrics.TxConflictRetriesTotal.Write)
	o, err := create.Execute(e.ctx, CreateOrderRequest{
		Actor:             Actor{UserID: 1},
		ShippingAddressID: addr,
		BillingAddressID:  addr,
		Items:             []CreateOrderItem{{ISBN: isbnX, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.NotNil(t, o)
	assert.Equal(t, 4, e.reserved(isbnX), "失败的尝试已回滚,只留下最后一次的预留")
	assert.Equal(t, int64(1), e.orderCount(1))
	assert.Equal(t, before+2, counterValue(t, metrics.TxConflictRetriesTotal.Write))
}

func TestCreateOrder_GivesUpAfterMaxRetries(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	addr := e.seedAddress(1)

	flaky := &flakyTx{inner: e.tx}
	flaky.failures.Store(100)
	opts := testOptions
	opts.MaxRetries = 1
	create := e.newCreate(flaky, opts)

	_, err := create.Execute(e.ctx, CreateOrderRequest{
		Actor:             Actor{UserID: 1},
		ShippingAddressID: addr,
		BillingAddressID:  addr,
		Items:             []CreateOrderItem{{ISBN: isbnX, Quantity: 4}},
	})
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)
	assert.True(t, apperrors.IsRetryable(err))
	assert.Equal(t, 0, e.reserved(isbnX))
	assert.Zero(t, e.orderCount(1))
	assert.Equal(t, int32(98), flaky.failures.Load(), "首次尝试 + 1次重试")
}

func TestCreateOrder_Timeout(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	addr := e.seedAddress(1)

	opts := testOptions
	opts.TxTimeout = time.Nanosecond
	create := e.newCreate(e.tx, opts)

	_, err := create.Execute(e.ctx, CreateOrderRequest{
		Actor:             Actor{UserID: 1},
		ShippingAddressID: addr,
		BillingAddressID:  addr,
		Items:             []CreateOrderItem{{ISBN: isbnX, Quantity: 4}},
	})
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.Equal(t, 0, e.reserved(isbnX))
	assert.Zero(t, e.orderCount(1))
}

func TestCancelOrder_ReleasesReservations(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	e.seedBook(isbnY, "45.00", 5)
	addr := e.seedAddress(1)

	o := e.placeOrder(1, addr,
		CreateOrderItem{ISBN: isbnY, Quantity: 2},
		CreateOrderItem{ISBN: isbnX, Quantity: 3},
	)
	require.Equal(t, 3, e.reserved(isbnX))
	require.Equal(t, 2, e.reserved(isbnY))

	// 别人不能取消
	_, err := e.cancel.Execute(e.ctx, Actor{UserID: 2}, o.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	cancelled, err := e.cancel.Execute(e.ctx, Actor{UserID: 1}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 0, e.reserved(isbnX))
	assert.Equal(t, 0, e.reserved(isbnY))

	assert.Equal(t, []string{RoutingKeyOrderCreated, RoutingKeyOrderCancelled}, e.events.keys)
	event, ok := e.events.events[1].(OrderCancelledEvent)
	require.True(t, ok)
	assert.Len(t, event.Released, 2)

	logs, err := e.ledger.Logs(e.ctx, isbnX, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, inventory.ChangeTypeRelease, logs[0].ChangeType)
	assert.Equal(t, o.OrderNo, logs[0].Reference)

	// 重复取消不会重复释放
	_, err = e.cancel.Execute(e.ctx, Actor{UserID: 1}, o.ID)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	assert.Equal(t, 0, e.reserved(isbnX))

	_, err = e.cancel.Execute(e.ctx, SystemActor, 12345)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestChangeStatus(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	addr := e.seedAddress(1)
	admin := Actor{UserID: 99, Admin: true}
	owner := Actor{UserID: 1}

	o := e.placeOrder(1, addr, CreateOrderItem{ISBN: isbnX, Quantity: 2})

	_, err := e.status.Execute(e.ctx, owner, o.ID, order.OrderStatusShipped)
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "发货只能由管理员操作")

	_, err = e.status.Execute(e.ctx, admin, o.ID, order.OrderStatusShipped)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition, "未支付不能发货")

	paid, err := e.status.Execute(e.ctx, owner, o.ID, order.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, 2, e.reserved(isbnX))

	shipped, err := e.status.Execute(e.ctx, admin, o.ID, order.OrderStatusShipped)
	require.NoError(t, err)
	assert.NotNil(t, shipped.ShippedAt)

	_, err = e.status.Execute(e.ctx, owner, o.ID, order.OrderStatusCancelled)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition, "已发货不能取消")

	// 已支付的订单取消同样释放预留
	o2 := e.placeOrder(1, addr, CreateOrderItem{ISBN: isbnX, Quantity: 3})
	require.Equal(t, 5, e.reserved(isbnX))
	_, err = e.status.Execute(e.ctx, owner, o2.ID, order.OrderStatusPaid)
	require.NoError(t, err)
	cancelled, err := e.status.Execute(e.ctx, owner, o2.ID, order.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 2, e.reserved(isbnX))
}

// 改地址路径同样受地址归属约束
func TestUpdateAddresses_GuardsOwnership(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	home := e.seedAddress(1)
	office := e.seedAddress(1)
	stranger := e.seedAddress(2)
	owner := Actor{UserID: 1}

	o := e.placeOrder(1, home, CreateOrderItem{ISBN: isbnX, Quantity: 1})

	updated, err := e.readdr.Execute(e.ctx, UpdateAddressesRequest{
		Actor: owner, OrderID: o.ID, ShippingAddressID: office, BillingAddressID: home,
	})
	require.NoError(t, err)
	assert.Equal(t, office, updated.ShippingAddressID)
	assert.Equal(t, home, updated.BillingAddressID)

	tests := []struct {
		name     string
		shipping uint
		billing  uint
		wantErr  error
	}{
		{"收货和账单主人不同", office, stranger, address.ErrAddressOwnerMismatch},
		{"整单转给别人", stranger, stranger, order.ErrOwnerChanged},
		{"地址不存在", 999, home, address.ErrAddressNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.readdr.Execute(e.ctx, UpdateAddressesRequest{
				Actor: owner, OrderID: o.ID, ShippingAddressID: tt.shipping, BillingAddressID: tt.billing,
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	stored, err := e.get.Execute(e.ctx, owner, o.ID)
	require.NoError(t, err)
	assert.Equal(t, office, stored.ShippingAddressID)
	assert.Equal(t, home, stored.BillingAddressID)

	admin := Actor{UserID: 99, Admin: true}
	_, err = e.status.Execute(e.ctx, owner, o.ID, order.OrderStatusPaid)
	require.NoError(t, err)
	_, err = e.status.Execute(e.ctx, admin, o.ID, order.OrderStatusShipped)
	require.NoError(t, err)

	_, err = e.readdr.Execute(e.ctx, UpdateAddressesRequest{
		Actor: owner, OrderID: o.ID, ShippingAddressID: home, BillingAddressID: home,
	})
	assert.ErrorIs(t, err, order.ErrAddressesLocked)
}

func TestQueries(t *testing.T) {
	e := newEnv(t)
	e.seedBook(isbnX, "29.99", 10)
	addr := e.seedAddress(1)

	o := e.placeOrder(1, addr, CreateOrderItem{ISBN: isbnX, Quantity: 1})
	e.placeOrder(1, addr, CreateOrderItem{ISBN: isbnX, Quantity: 1})

	_, err := e.get.Execute(e.ctx, Actor{UserID: 2}, o.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = e.get.Execute(e.ctx, Actor{UserID: 2, Admin: true}, o.ID)
	assert.NoError(t, err)

	orders, total, err := e.list.Execute(e.ctx, Actor{UserID: 1}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	orders, total, err = e.list.Execute(e.ctx, Actor{UserID: 2}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{order.ErrInvalidQuantity, "validation"},
		{address.ErrAddressOwnerMismatch, "constraint"},
		{price.ErrPriceNotFound, "not_found"},
		{address.ErrAddressNotFound, "not_found"},
		{inventory.ErrInsufficientStock, "insufficient_stock"},
		{apperrors.ErrConcurrencyConflict, "conflict"},
		{apperrors.ErrTimeout, "timeout"},
		{apperrors.ErrForbidden, "forbidden"},
		{fmt.Errorf("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, failureReason(tt.err), tt.err.Error())
	}
}
