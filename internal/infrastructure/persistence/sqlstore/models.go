package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"
)

// 设计说明:
// 1. 这里是infrastructure层的数据模型，包含GORM tag
// 2. domain层的实体不依赖GORM,Repository负责两者之间的转换
// 3. 金额统一用decimal(10,2)存储,Go侧用shopspring/decimal,避免浮点误差

// BookModel GORM图书模型
// ISBN本身就是主键,其它表通过isbn引用图书
type BookModel struct {
	ISBN            string    `gorm:"primaryKey;size:13;comment:ISBN号(已规范化)"`
	Title           string    `gorm:"size:200;not null;comment:书名"`
	PublicationYear int       `gorm:"not null;comment:出版年份"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// PriceModel GORM价格记录模型
// 教学要点:
// 1. (isbn, valid_from) 复合索引服务于"某时刻生效价格"查询
// 2. valid_until为NULL表示开放记录;每本书最多一条
type PriceModel struct {
	ID         uint            `gorm:"primaryKey"`
	ISBN       string          `gorm:"size:13;not null;index:idx_price_isbn_from,priority:1;comment:ISBN号"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:单价"`
	ValidFrom  time.Time       `gorm:"not null;index:idx_price_isbn_from,priority:2;comment:生效时间(含)"`
	ValidUntil *time.Time      `gorm:"comment:失效时间(不含),NULL表示仍在生效"`
}

// TableName 指定表名
func (PriceModel) TableName() string {
	return "prices"
}

// InventoryModel GORM库存模型
// 教学要点:CHECK约束是防超卖的最后一道防线(MySQL 8.0.16+ 与 SQLite 均会执行)
type InventoryModel struct {
	ID               uint       `gorm:"primaryKey"`
	ISBN             string     `gorm:"uniqueIndex;size:13;not null;comment:ISBN号"`
	Quantity         int        `gorm:"not null;default:0;check:chk_inventory_quantity,quantity >= 0;comment:在库数量"`
	QuantityReserved int        `gorm:"not null;default:0;check:chk_inventory_reserved,quantity_reserved >= 0 AND quantity_reserved <= quantity;comment:已预留数量"`
	ReorderThreshold int        `gorm:"not null;default:0;comment:补货阈值"`
	LastRestockedAt  *time.Time `gorm:"comment:最近补货时间"`
	UpdatedAt        time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (InventoryModel) TableName() string {
	return "inventories"
}

// InventoryLogModel 库存变更日志
type InventoryLogModel struct {
	ID             uint      `gorm:"primaryKey"`
	ISBN           string    `gorm:"size:13;not null;index:idx_inventory_log_isbn,priority:1;comment:ISBN号"`
	ChangeType     string    `gorm:"size:16;not null;comment:RESERVE|RELEASE|RESTOCK"`
	Quantity       int       `gorm:"not null;comment:变更数量"`
	QuantityBefore int       `gorm:"not null"`
	QuantityAfter  int       `gorm:"not null"`
	ReservedBefore int       `gorm:"not null"`
	ReservedAfter  int       `gorm:"not null"`
	Reference      string    `gorm:"size:64;index;comment:关联订单号"`
	CreatedAt      time.Time `gorm:"index:idx_inventory_log_isbn,priority:2;comment:创建时间"`
}

// TableName 指定表名
func (InventoryLogModel) TableName() string {
	return "inventory_logs"
}

// AddressModel GORM地址模型
type AddressModel struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null;comment:所属用户ID"`
	Street      string    `gorm:"size:200;not null"`
	BuildingNr  string    `gorm:"size:20;not null"`
	ApartmentNr string    `gorm:"size:20"`
	City        string    `gorm:"size:100;not null"`
	PostalCode  string    `gorm:"size:20;not null"`
	Country     string    `gorm:"size:100;not null"`
	IsPrimary   bool      `gorm:"not null;default:false;comment:是否主地址"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (AddressModel) TableName() string {
	return "addresses"
}

// OrderModel GORM订单模型
// 教学要点:
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. Status使用int存储(节省空间,便于索引)
type OrderModel struct {
	ID                uint             `gorm:"primaryKey"`
	OrderNo           string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	OwnerID           uint             `gorm:"index;not null;comment:订单所属用户ID(由地址决定)"`
	ShippingAddressID uint             `gorm:"not null;comment:收货地址ID"`
	BillingAddressID  uint             `gorm:"not null;comment:账单地址ID"`
	Total             decimal.Decimal  `gorm:"type:decimal(12,2);not null;comment:订单总金额"`
	Status            int              `gorm:"index;type:tinyint;default:1;comment:订单状态(1待支付2已支付3已发货4已完成5已取消)"`
	Items             []OrderItemModel `gorm:"foreignKey:OrderID"` // 一对多关联
	CreatedAt         time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt         time.Time        `gorm:"comment:更新时间"`
	PaidAt            *time.Time       `gorm:"comment:支付时间"`
	ShippedAt         *time.Time       `gorm:"comment:发货时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 教学要点:
// 1. PriceID指向下单时生效的价格记录,UnitPrice是它的快照
// 2. 同一订单内ISBN唯一
type OrderItemModel struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;uniqueIndex:idx_order_item_isbn,priority:1;comment:订单ID"`
	ISBN      string          `gorm:"size:13;not null;uniqueIndex:idx_order_item_isbn,priority:2;comment:ISBN号"`
	PriceID   uint            `gorm:"not null;index;comment:价格记录ID"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:下单时单价"`
	Quantity  int             `gorm:"not null;comment:购买数量"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}
