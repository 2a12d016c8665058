package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// memRepo 内存仓储,记录加锁顺序
type memRepo struct {
	rows      map[string]*Inventory
	logs      []*Log
	lockOrder []string
}

func newMemRepo(rows ...*Inventory) *memRepo {
	m := &memRepo{rows: make(map[string]*Inventory)}
	for _, r := range rows {
		m.rows[r.ISBN] = r
	}
	return m
}

func (m *memRepo) Create(_ context.Context, inv *Inventory) error {
	m.rows[inv.ISBN] = inv
	return nil
}

func (m *memRepo) FindByISBN(_ context.Context, isbn string) (*Inventory, error) {
	r, ok := m.rows[isbn]
	if !ok {
		return nil, ErrInventoryNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) LockByISBN(ctx context.Context, isbn string) (*Inventory, error) {
	m.lockOrder = append(m.lockOrder, isbn)
	return m.FindByISBN(ctx, isbn)
}

func (m *memRepo) AdjustReserved(_ context.Context, isbn string, delta int) error {
	r := m.rows[isbn]
	if delta > 0 && r.Quantity-r.QuantityReserved < delta {
		return ErrGuardRejected
	}
	if delta < 0 && r.QuantityReserved+delta < 0 {
		return ErrGuardRejected
	}
	r.QuantityReserved += delta
	return nil
}

func (m *memRepo) AddQuantity(_ context.Context, isbn string, added int, at time.Time) error {
	r := m.rows[isbn]
	r.Quantity += added
	r.LastRestockedAt = &at
	return nil
}

func (m *memRepo) CreateLog(_ context.Context, log *Log) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *memRepo) ListLogs(_ context.Context, isbn string, limit int) ([]*Log, error) {
	return m.logs, nil
}

type passthroughTx struct{}

func (passthroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var fixedNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestLedger(repo *memRepo, logger *zap.Logger) *Ledger {
	return NewLedger(repo, passthroughTx{}, logger).WithClock(func() time.Time { return fixedNow })
}

func TestLedger_LockOrderIsSorted(t *testing.T) {
	repo := newMemRepo(
		&Inventory{ISBN: "9780000000002", Quantity: 1},
		&Inventory{ISBN: "9780000000001", Quantity: 1},
		&Inventory{ISBN: "0000000003", Quantity: 1},
	)
	l := newTestLedger(repo, zap.NewNop())

	locked, err := l.Lock(context.Background(), []string{"9780000000002", "9780000000001", "0000000003", "9780000000001"})
	require.NoError(t, err)
	assert.Len(t, locked, 3)
	assert.Equal(t, []string{"0000000003", "9780000000001", "9780000000002"}, repo.lockOrder)
}

func TestLedger_ReserveWritesLog(t *testing.T) {
	repo := newMemRepo(&Inventory{ISBN: "9780132350884", Quantity: 5, QuantityReserved: 1})
	l := newTestLedger(repo, zap.NewNop())

	require.NoError(t, l.Reserve(context.Background(), "9780132350884", 4, "ORD1"))
	assert.Equal(t, 5, repo.rows["9780132350884"].QuantityReserved)

	require.Len(t, repo.logs, 1)
	log := repo.logs[0]
	assert.Equal(t, ChangeTypeReserve, log.ChangeType)
	assert.Equal(t, 1, log.ReservedBefore)
	assert.Equal(t, 5, log.ReservedAfter)
	assert.Equal(t, "ORD1", log.Reference)
	assert.Equal(t, fixedNow, log.CreatedAt)
}

func TestLedger_ReserveInsufficient(t *testing.T) {
	repo := newMemRepo(&Inventory{ISBN: "9780132350884", Quantity: 2})
	l := newTestLedger(repo, zap.NewNop())

	err := l.Reserve(context.Background(), "9780132350884", 3, "ORD1")
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 0, repo.rows["9780132350884"].QuantityReserved)
	assert.Empty(t, repo.logs)

	err = l.Reserve(context.Background(), "9999999999", 1, "ORD1")
	assert.ErrorIs(t, err, ErrInventoryNotFound)
}

func TestLedger_ReleaseUnderflowIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	repo := newMemRepo(&Inventory{ISBN: "9780132350884", Quantity: 5, QuantityReserved: 1})
	l := newTestLedger(repo, zap.New(core))

	err := l.Release(context.Background(), "9780132350884", 2, "ORD1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.Equal(t, 1, repo.rows["9780132350884"].QuantityReserved)
	assert.Equal(t, 1, logs.FilterMessage("库存释放越界").Len())

	require.NoError(t, l.Release(context.Background(), "9780132350884", 1, "ORD1"))
	assert.Equal(t, 0, repo.rows["9780132350884"].QuantityReserved)
}

func TestLedger_Restock(t *testing.T) {
	repo := newMemRepo(&Inventory{ISBN: "9780132350884", Quantity: 1, QuantityReserved: 1})
	l := newTestLedger(repo, zap.NewNop())

	inv, err := l.Restock(context.Background(), "9780132350884", 9, time.Time{}, "补货")
	require.NoError(t, err)
	assert.Equal(t, 9, inv.Available())
	assert.Equal(t, fixedNow, *repo.rows["9780132350884"].LastRestockedAt)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, ChangeTypeRestock, repo.logs[0].ChangeType)

	_, err = l.Restock(context.Background(), "9780132350884", 0, time.Time{}, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
