package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
)

// inventoryRepository 库存仓储实现
type inventoryRepository struct {
	store
}

// NewInventoryRepository 创建库存仓储
func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{store{db: db}}
}

// Create 创建库存记录
func (r *inventoryRepository) Create(ctx context.Context, inv *inventory.Inventory) error {
	model := &InventoryModel{
		ISBN:             inv.ISBN,
		Quantity:         inv.Quantity,
		QuantityReserved: inv.QuantityReserved,
		ReorderThreshold: inv.ReorderThreshold,
		LastRestockedAt:  inv.LastRestockedAt,
	}
	if err := r.conn(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return inventory.ErrDuplicateInventory
		}
		return wrapDBError(err, "创建库存记录失败")
	}
	inv.ID = model.ID
	inv.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByISBN 普通查询
func (r *inventoryRepository) FindByISBN(ctx context.Context, isbn string) (*inventory.Inventory, error) {
	return r.find(r.conn(ctx), isbn, "查询库存失败")
}

// LockByISBN 悲观锁查询
// SELECT * FROM inventories WHERE isbn = ? FOR UPDATE
func (r *inventoryRepository) LockByISBN(ctx context.Context, isbn string) (*inventory.Inventory, error) {
	return r.find(r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), isbn, "锁定库存失败")
}

func (r *inventoryRepository) find(db *gorm.DB, isbn, message string) (*inventory.Inventory, error) {
	var model InventoryModel
	if err := db.Where("isbn = ?", isbn).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, wrapDBError(err, message)
	}
	return toInventoryEntity(&model), nil
}

// AdjustReserved 条件更新预留数量(原子操作)
// 预留: UPDATE inventories SET quantity_reserved = quantity_reserved + ? WHERE isbn = ? AND quantity - quantity_reserved >= ?
// 释放: UPDATE inventories SET quantity_reserved = quantity_reserved + ? WHERE isbn = ? AND quantity_reserved + ? >= 0
func (r *inventoryRepository) AdjustReserved(ctx context.Context, isbn string, delta int) error {
	db := r.conn(ctx).Model(&InventoryModel{}).Where("isbn = ?", isbn)
	if delta > 0 {
		db = db.Where("quantity - quantity_reserved >= ?", delta)
	} else {
		db = db.Where("quantity_reserved + ? >= 0", delta)
	}

	result := db.Update("quantity_reserved", gorm.Expr("quantity_reserved + ?", delta))
	if result.Error != nil {
		return wrapDBError(result.Error, "更新预留数量失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrGuardRejected
	}
	return nil
}

// AddQuantity 补货
func (r *inventoryRepository) AddQuantity(ctx context.Context, isbn string, added int, restockedAt time.Time) error {
	result := r.conn(ctx).Model(&InventoryModel{}).
		Where("isbn = ?", isbn).
		Updates(map[string]interface{}{
			"quantity":          gorm.Expr("quantity + ?", added),
			"last_restocked_at": restockedAt,
		})
	if result.Error != nil {
		return wrapDBError(result.Error, "补货失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrInventoryNotFound
	}
	return nil
}

// CreateLog 写库存变更日志
func (r *inventoryRepository) CreateLog(ctx context.Context, log *inventory.Log) error {
	model := &InventoryLogModel{
		ISBN:           log.ISBN,
		ChangeType:     string(log.ChangeType),
		Quantity:       log.Quantity,
		QuantityBefore: log.QuantityBefore,
		QuantityAfter:  log.QuantityAfter,
		ReservedBefore: log.ReservedBefore,
		ReservedAfter:  log.ReservedAfter,
		Reference:      log.Reference,
		CreatedAt:      log.CreatedAt,
	}
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return wrapDBError(err, "写库存日志失败")
	}
	log.ID = model.ID
	return nil
}

// ListLogs 最近的变更日志
func (r *inventoryRepository) ListLogs(ctx context.Context, isbn string, limit int) ([]*inventory.Log, error) {
	var models []InventoryLogModel
	err := r.conn(ctx).
		Where("isbn = ?", isbn).
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, wrapDBError(err, "查询库存日志失败")
	}

	logs := make([]*inventory.Log, len(models))
	for i, m := range models {
		logs[i] = &inventory.Log{
			ID:             m.ID,
			ISBN:           m.ISBN,
			ChangeType:     inventory.ChangeType(m.ChangeType),
			Quantity:       m.Quantity,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			ReservedBefore: m.ReservedBefore,
			ReservedAfter:  m.ReservedAfter,
			Reference:      m.Reference,
			CreatedAt:      m.CreatedAt.UTC(),
		}
	}
	return logs, nil
}

func toInventoryEntity(model *InventoryModel) *inventory.Inventory {
	inv := &inventory.Inventory{
		ID:               model.ID,
		ISBN:             model.ISBN,
		Quantity:         model.Quantity,
		QuantityReserved: model.QuantityReserved,
		ReorderThreshold: model.ReorderThreshold,
		UpdatedAt:        model.UpdatedAt.UTC(),
	}
	if model.LastRestockedAt != nil {
		at := model.LastRestockedAt.UTC()
		inv.LastRestockedAt = &at
	}
	return inv
}
