// Package catalog 图书目录相关用例:上架、查询、调价、补货
package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/bookstore-ledger/internal/domain/book"
	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
)

// BookSnapshot 图书展示快照:图书信息 + 当前价格 + 库存
//
// 教学要点:
// 1. 快照只用于展示,允许短暂过期(最终一致)
// 2. 下单永远读数据库并加锁,不读快照
type BookSnapshot struct {
	ISBN            string    `json:"isbn"`
	Title           string    `json:"title"`
	PublicationYear int       `json:"publication_year"`
	PriceID         uint      `json:"price_id,omitempty"`
	UnitPrice       string    `json:"unit_price,omitempty"` // 没有生效价格时为空
	Quantity        int       `json:"quantity"`
	Reserved        int       `json:"reserved"`
	Available       int       `json:"available"`
	NeedsReorder    bool      `json:"needs_reorder"`
	SnapshotAt      time.Time `json:"snapshot_at"`
}

// SnapshotCache 快照缓存(Cache-Aside)
// Get未命中返回(nil, nil)
type SnapshotCache interface {
	Get(ctx context.Context, isbn string) (*BookSnapshot, error)
	Set(ctx context.Context, snapshot *BookSnapshot) error
	Invalidate(ctx context.Context, isbns ...string) error
}

// NopSnapshotCache 不使用缓存(未配置Redis时)
type NopSnapshotCache struct{}

func (NopSnapshotCache) Get(context.Context, string) (*BookSnapshot, error) { return nil, nil }
func (NopSnapshotCache) Set(context.Context, *BookSnapshot) error           { return nil }
func (NopSnapshotCache) Invalidate(context.Context, ...string) error        { return nil }

func newSnapshot(b *book.Book, p *price.Record, inv *inventory.Inventory, at time.Time) *BookSnapshot {
	s := &BookSnapshot{
		ISBN:            b.ISBN,
		Title:           b.Title,
		PublicationYear: b.PublicationYear,
		SnapshotAt:      at,
	}
	if p != nil {
		s.PriceID = p.ID
		s.UnitPrice = p.UnitPrice.StringFixed(2)
	}
	if inv != nil {
		s.Quantity = inv.Quantity
		s.Reserved = inv.QuantityReserved
		s.Available = inv.Available()
		s.NeedsReorder = inv.NeedsReorder()
	}
	return s
}
