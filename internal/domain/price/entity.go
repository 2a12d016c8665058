package price

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record 价格记录
// 教学要点:
// 1. 价格不是图书的一个字段,而是一条条"有效期记录"
// 2. 有效期是半开区间 [ValidFrom, ValidUntil),ValidUntil为nil表示仍在生效
// 3. 只追加不删除:调价=关闭当前记录+插入新记录,历史订单引用的记录永远存在
type Record struct {
	ID         uint
	ISBN       string
	UnitPrice  decimal.Decimal
	ValidFrom  time.Time
	ValidUntil *time.Time
}

// NewRecord 创建一条从effectiveAt开始生效的开放记录
func NewRecord(isbn string, unitPrice decimal.Decimal, effectiveAt time.Time) (*Record, error) {
	if err := ValidateUnitPrice(unitPrice); err != nil {
		return nil, err
	}
	return &Record{
		ISBN:      isbn,
		UnitPrice: unitPrice,
		ValidFrom: effectiveAt,
	}, nil
}

// ValidateUnitPrice 单价必须为正数,最多两位小数
func ValidateUnitPrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return ErrInvalidUnitPrice
	}
	if !p.Equal(p.Round(2)) {
		return ErrInvalidUnitPrice
	}
	return nil
}

// IsOpen 是否为当前开放记录
func (r *Record) IsOpen() bool {
	return r.ValidUntil == nil
}

// Covers 判断asOf是否落在 [ValidFrom, ValidUntil) 内
func (r *Record) Covers(asOf time.Time) bool {
	if asOf.Before(r.ValidFrom) {
		return false
	}
	return r.ValidUntil == nil || asOf.Before(*r.ValidUntil)
}

// CanBeSucceededAt 新记录能否从effectiveAt开始生效而不与本记录重叠
// - 开放记录:effectiveAt必须严格晚于ValidFrom(关闭后区间不能为空)
// - 已关闭记录:effectiveAt不能早于ValidUntil
func (r *Record) CanBeSucceededAt(effectiveAt time.Time) bool {
	if r.ValidUntil == nil {
		return effectiveAt.After(r.ValidFrom)
	}
	return !effectiveAt.Before(*r.ValidUntil)
}

// Close 在until时刻关闭记录
func (r *Record) Close(until time.Time) error {
	if !r.IsOpen() {
		return ErrRecordClosed
	}
	if !until.After(r.ValidFrom) {
		return ErrInvalidEffectiveAt
	}
	r.ValidUntil = &until
	return nil
}
