package sqlstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// orderRepository 订单仓储实现
// 教学要点:
// 1. Order和OrderItem是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	store
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{store{db: db}}
}

// Create 创建订单
// 教学要点:
// 1. GORM会自动保存关联的Items(通过foreignKey)
// 2. 必须在事务中调用(通过conn从context获取事务DB)
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	if err := r.conn(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.WithCode(err, apperrors.ErrCodeDuplicateEntry, "订单号重复")
		}
		return wrapDBError(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}
	return nil
}

// FindByID 根据ID查找订单
// Preload("Items")会执行:
// 1. SELECT * FROM orders WHERE id = ?
// 2. SELECT * FROM order_items WHERE order_id IN (?)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.first(r.conn(ctx), "查询订单失败", "id = ?", id)
}

// LockByID 悲观锁查询订单
func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.first(r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "锁定订单失败", "id = ?", id)
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return r.first(r.conn(ctx), "查询订单失败", "order_no = ?", orderNo)
}

func (r *orderRepository) first(db *gorm.DB, message, query string, args ...interface{}) (*order.Order, error) {
	var model OrderModel
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Where(query, args...).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, wrapDBError(err, message)
	}
	return toOrderEntity(&model), nil
}

// UpdateStatus 更新订单状态及支付/发货时间
func (r *orderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	result := r.conn(ctx).Model(&OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":     int(o.Status),
			"paid_at":    o.PaidAt,
			"shipped_at": o.ShippedAt,
			"updated_at": o.UpdatedAt,
		})
	if result.Error != nil {
		return wrapDBError(result.Error, "更新订单状态失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// UpdateAddresses 更新收货/账单地址
func (r *orderRepository) UpdateAddresses(ctx context.Context, o *order.Order) error {
	result := r.conn(ctx).Model(&OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"shipping_address_id": o.ShippingAddressID,
			"billing_address_id":  o.BillingAddressID,
			"updated_at":          o.UpdatedAt,
		})
	if result.Error != nil {
		return wrapDBError(result.Error, "更新订单地址失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// ListByOwner 查询用户的订单列表(分页)
func (r *orderRepository) ListByOwner(ctx context.Context, ownerID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	// Session让query可以安全地复用于Count和Find
	query := r.conn(ctx).Model(&OrderModel{}).Where("owner_id = ?", ownerID).Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("created_at DESC").Order("id DESC").
		Limit(pageSize).Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ISBN:      item.ISBN,
			PriceID:   item.PriceID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}
	return &OrderModel{
		ID:                o.ID,
		OrderNo:           o.OrderNo,
		OwnerID:           o.OwnerID,
		ShippingAddressID: o.ShippingAddressID,
		BillingAddressID:  o.BillingAddressID,
		Total:             o.Total,
		Status:            int(o.Status),
		Items:             items,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		PaidAt:            o.PaidAt,
		ShippedAt:         o.ShippedAt,
	}
}

func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.Item, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.Item{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ISBN:      item.ISBN,
			PriceID:   item.PriceID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}
	return &order.Order{
		ID:                model.ID,
		OrderNo:           model.OrderNo,
		OwnerID:           model.OwnerID,
		ShippingAddressID: model.ShippingAddressID,
		BillingAddressID:  model.BillingAddressID,
		Status:            order.OrderStatus(model.Status),
		Total:             model.Total,
		Items:             items,
		CreatedAt:         model.CreatedAt.UTC(),
		UpdatedAt:         model.UpdatedAt.UTC(),
		PaidAt:            utcPtr(model.PaidAt),
		ShippedAt:         utcPtr(model.ShippedAt),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
