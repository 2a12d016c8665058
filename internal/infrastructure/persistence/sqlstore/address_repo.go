package sqlstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-ledger/internal/domain/address"
)

// addressRepository 地址仓储实现
type addressRepository struct {
	store
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(db *gorm.DB) address.Repository {
	return &addressRepository{store{db: db}}
}

// Create 创建地址
func (r *addressRepository) Create(ctx context.Context, a *address.Address) error {
	model := toAddressModel(a)
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return wrapDBError(err, "创建地址失败")
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	return nil
}

// FindByID 根据ID查找地址
func (r *addressRepository) FindByID(ctx context.Context, id uint) (*address.Address, error) {
	var model AddressModel
	if err := r.conn(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, address.ErrAddressNotFound
		}
		return nil, wrapDBError(err, "查询地址失败")
	}
	return toAddressEntity(&model), nil
}

// ListByUser 用户的全部地址,主地址排在最前
func (r *addressRepository) ListByUser(ctx context.Context, userID uint) ([]*address.Address, error) {
	var models []AddressModel
	err := r.conn(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, wrapDBError(err, "查询地址列表失败")
	}
	return toAddressEntities(models), nil
}

// LockByUser SELECT FOR UPDATE锁定用户的地址行
// 教学要点:
// 1. 锁定读是当前读,能看到其他事务已提交的地址,普通快照读看不到
// 2. 用户还没有地址时InnoDB在user_id索引上加间隙锁,两个"第一个地址"并发插入会有一方死锁回滚(1213 → 并发冲突,可重试)
func (r *addressRepository) LockByUser(ctx context.Context, userID uint) ([]*address.Address, error) {
	var models []AddressModel
	err := r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, wrapDBError(err, "锁定用户地址失败")
	}
	return toAddressEntities(models), nil
}

func toAddressEntities(models []AddressModel) []*address.Address {
	addresses := make([]*address.Address, len(models))
	for i := range models {
		addresses[i] = toAddressEntity(&models[i])
	}
	return addresses
}

// ClearPrimary 取消用户当前的主地址
func (r *addressRepository) ClearPrimary(ctx context.Context, userID uint) error {
	err := r.conn(ctx).Model(&AddressModel{}).
		Where("user_id = ? AND is_primary = ?", userID, true).
		Update("is_primary", false).Error
	if err != nil {
		return wrapDBError(err, "更新主地址失败")
	}
	return nil
}

func toAddressModel(a *address.Address) *AddressModel {
	return &AddressModel{
		ID:          a.ID,
		UserID:      a.UserID,
		Street:      a.Street,
		BuildingNr:  a.BuildingNr,
		ApartmentNr: a.ApartmentNr,
		City:        a.City,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		IsPrimary:   a.IsPrimary,
		CreatedAt:   a.CreatedAt,
	}
}

func toAddressEntity(model *AddressModel) *address.Address {
	return &address.Address{
		ID:          model.ID,
		UserID:      model.UserID,
		Street:      model.Street,
		BuildingNr:  model.BuildingNr,
		ApartmentNr: model.ApartmentNr,
		City:        model.City,
		PostalCode:  model.PostalCode,
		Country:     model.Country,
		IsPrimary:   model.IsPrimary,
		CreatedAt:   model.CreatedAt.UTC(),
	}
}
