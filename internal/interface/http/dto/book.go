package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-ledger/internal/application/catalog"
	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
)

// PublishBookRequest HTTP上架请求
// validator tag说明:
// - isbn: 自定义ISBN格式校验(在pkg/validator中注册)
// - unit_price 用字符串传递,避免JSON浮点数误差("29.99")
type PublishBookRequest struct {
	ISBN             string          `json:"isbn" binding:"required,isbn" example:"9780132350884"`
	Title            string          `json:"title" binding:"required,max=200" example:"Clean Code"`
	PublicationYear  int             `json:"publication_year" binding:"required,min=1450,max=2100" example:"2008"`
	UnitPrice        decimal.Decimal `json:"unit_price" swaggertype:"string" example:"29.99"`
	InitialStock     int             `json:"initial_stock" binding:"min=0" example:"10"`
	ReorderThreshold int             `json:"reorder_threshold" binding:"min=0" example:"2"`
}

// BookResponse 图书快照(图书 + 当前价格 + 库存)
type BookResponse struct {
	ISBN            string `json:"isbn" example:"9780132350884"`
	Title           string `json:"title" example:"Clean Code"`
	PublicationYear int    `json:"publication_year" example:"2008"`
	PriceID         uint   `json:"price_id,omitempty" example:"1"`
	UnitPrice       string `json:"unit_price,omitempty" example:"29.99"`
	Quantity        int    `json:"quantity" example:"10"`
	Reserved        int    `json:"reserved" example:"4"`
	Available       int    `json:"available" example:"6"`
	NeedsReorder    bool   `json:"needs_reorder" example:"false"`
	SnapshotAt      string `json:"snapshot_at" example:"2024-06-01T10:00:00Z"`
}

// NewBookResponse 快照 → 响应
func NewBookResponse(s *catalog.BookSnapshot) *BookResponse {
	return &BookResponse{
		ISBN:            s.ISBN,
		Title:           s.Title,
		PublicationYear: s.PublicationYear,
		PriceID:         s.PriceID,
		UnitPrice:       s.UnitPrice,
		Quantity:        s.Quantity,
		Reserved:        s.Reserved,
		Available:       s.Available,
		NeedsReorder:    s.NeedsReorder,
		SnapshotAt:      FormatTime(s.SnapshotAt),
	}
}

// SetPriceRequest 调价请求
// effective_at为空表示立即生效
type SetPriceRequest struct {
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string" example:"34.50"`
	EffectiveAt *time.Time      `json:"effective_at" example:"2024-07-01T00:00:00Z"`
}

// PriceRecordResponse 价格记录
type PriceRecordResponse struct {
	ID         uint   `json:"id" example:"2"`
	ISBN       string `json:"isbn" example:"9780132350884"`
	UnitPrice  string `json:"unit_price" example:"34.50"`
	ValidFrom  string `json:"valid_from" example:"2024-07-01T00:00:00Z"`
	ValidUntil string `json:"valid_until,omitempty"` // 空表示仍在生效
}

// NewPriceRecordResponse 价格记录 → 响应
func NewPriceRecordResponse(r *price.Record) *PriceRecordResponse {
	resp := &PriceRecordResponse{
		ID:        r.ID,
		ISBN:      r.ISBN,
		UnitPrice: r.UnitPrice.StringFixed(2),
		ValidFrom: FormatTime(r.ValidFrom),
	}
	if r.ValidUntil != nil {
		resp.ValidUntil = FormatTime(*r.ValidUntil)
	}
	return resp
}

// NewPriceHistoryResponse 价格历史
func NewPriceHistoryResponse(records []*price.Record) []*PriceRecordResponse {
	out := make([]*PriceRecordResponse, len(records))
	for i, r := range records {
		out[i] = NewPriceRecordResponse(r)
	}
	return out
}

// RestockRequest 补货请求
type RestockRequest struct {
	Added     int    `json:"added" binding:"required,min=1,max=100000" example:"20"`
	Reference string `json:"reference" binding:"max=64" example:"PO-2024-001"`
}

// InventoryResponse 库存
type InventoryResponse struct {
	ISBN             string `json:"isbn" example:"9780132350884"`
	Quantity         int    `json:"quantity" example:"30"`
	Reserved         int    `json:"reserved" example:"4"`
	Available        int    `json:"available" example:"26"`
	ReorderThreshold int    `json:"reorder_threshold" example:"2"`
	LastRestockedAt  string `json:"last_restocked_at,omitempty"`
}

// NewInventoryResponse 库存 → 响应
func NewInventoryResponse(inv *inventory.Inventory) *InventoryResponse {
	resp := &InventoryResponse{
		ISBN:             inv.ISBN,
		Quantity:         inv.Quantity,
		Reserved:         inv.QuantityReserved,
		Available:        inv.Available(),
		ReorderThreshold: inv.ReorderThreshold,
	}
	if inv.LastRestockedAt != nil {
		resp.LastRestockedAt = FormatTime(*inv.LastRestockedAt)
	}
	return resp
}

// InventoryLogResponse 库存变更日志
type InventoryLogResponse struct {
	ID             uint   `json:"id"`
	ChangeType     string `json:"change_type" example:"RESERVE"`
	Quantity       int    `json:"quantity"`
	QuantityBefore int    `json:"quantity_before"`
	QuantityAfter  int    `json:"quantity_after"`
	ReservedBefore int    `json:"reserved_before"`
	ReservedAfter  int    `json:"reserved_after"`
	Reference      string `json:"reference" example:"ORD1717236000000123456"`
	CreatedAt      string `json:"created_at"`
}

// NewInventoryLogsResponse 日志列表
func NewInventoryLogsResponse(logs []*inventory.Log) []*InventoryLogResponse {
	out := make([]*InventoryLogResponse, len(logs))
	for i, l := range logs {
		out[i] = &InventoryLogResponse{
			ID:             l.ID,
			ChangeType:     string(l.ChangeType),
			Quantity:       l.Quantity,
			QuantityBefore: l.QuantityBefore,
			QuantityAfter:  l.QuantityAfter,
			ReservedBefore: l.ReservedBefore,
			ReservedAfter:  l.ReservedAfter,
			Reference:      l.Reference,
			CreatedAt:      FormatTime(l.CreatedAt),
		}
	}
	return out
}

// FormatTime 统一的时间格式(RFC3339,UTC)
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatTime(*t)
}
