package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
)

// priceRepository 价格记录仓储实现
// 教学要点:记录只追加,唯一的更新是把开放记录的valid_until从NULL改成具体时间
type priceRepository struct {
	store
}

// NewPriceRepository 创建价格仓储
func NewPriceRepository(db *gorm.DB) price.Repository {
	return &priceRepository{store{db: db}}
}

// Create 插入价格记录
func (r *priceRepository) Create(ctx context.Context, rec *price.Record) error {
	model := &PriceModel{
		ISBN:       rec.ISBN,
		UnitPrice:  rec.UnitPrice,
		ValidFrom:  rec.ValidFrom,
		ValidUntil: rec.ValidUntil,
	}
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return wrapDBError(err, "创建价格记录失败")
	}
	rec.ID = model.ID
	return nil
}

// FindCovering 查询asOf时刻生效的记录
// valid_from <= asOf AND (valid_until IS NULL OR valid_until > asOf)
func (r *priceRepository) FindCovering(ctx context.Context, isbn string, asOf time.Time) ([]*price.Record, error) {
	var models []PriceModel
	err := r.conn(ctx).
		Where("isbn = ? AND valid_from <= ?", isbn, asOf).
		Where("(valid_until IS NULL OR valid_until > ?)", asOf).
		Order("valid_from DESC").
		Find(&models).Error
	if err != nil {
		return nil, wrapDBError(err, "查询生效价格失败")
	}
	return toPriceEntities(models), nil
}

// FindLatest 最新的一条记录
func (r *priceRepository) FindLatest(ctx context.Context, isbn string) (*price.Record, error) {
	var model PriceModel
	err := r.conn(ctx).
		Where("isbn = ?", isbn).
		Order("valid_from DESC").Order("id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, price.ErrPriceNotFound
		}
		return nil, wrapDBError(err, "查询最新价格失败")
	}
	return toPriceEntity(&model), nil
}

// CloseOpen 关闭开放记录
// UPDATE prices SET valid_until = ? WHERE id = ? AND valid_until IS NULL
func (r *priceRepository) CloseOpen(ctx context.Context, id uint, until time.Time) error {
	result := r.conn(ctx).Model(&PriceModel{}).
		Where("id = ? AND valid_until IS NULL", id).
		Update("valid_until", until)
	if result.Error != nil {
		return wrapDBError(result.Error, "关闭价格记录失败")
	}
	if result.RowsAffected == 0 {
		return price.ErrRecordClosed
	}
	return nil
}

// ListByISBN 价格历史
func (r *priceRepository) ListByISBN(ctx context.Context, isbn string) ([]*price.Record, error) {
	var models []PriceModel
	err := r.conn(ctx).
		Where("isbn = ?", isbn).
		Order("valid_from DESC").Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, wrapDBError(err, "查询价格历史失败")
	}
	return toPriceEntities(models), nil
}

func toPriceEntity(model *PriceModel) *price.Record {
	rec := &price.Record{
		ID:        model.ID,
		ISBN:      model.ISBN,
		UnitPrice: model.UnitPrice,
		ValidFrom: model.ValidFrom.UTC(),
	}
	if model.ValidUntil != nil {
		until := model.ValidUntil.UTC()
		rec.ValidUntil = &until
	}
	return rec
}

func toPriceEntities(models []PriceModel) []*price.Record {
	records := make([]*price.Record, len(models))
	for i := range models {
		records[i] = toPriceEntity(&models[i])
	}
	return records
}
