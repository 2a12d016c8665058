package inventory

import "time"

// ChangeType 库存变更类型
type ChangeType string

const (
	ChangeTypeReserve ChangeType = "RESERVE" // 下单预留
	ChangeTypeRelease ChangeType = "RELEASE" // 取消/补偿释放
	ChangeTypeRestock ChangeType = "RESTOCK" // 补货
)

// Log 库存变更日志
// 只增不改,记录变更前后的数量和关联的订单号,用于对账和排查
type Log struct {
	ID             uint
	ISBN           string
	ChangeType     ChangeType
	Quantity       int // 本次变更的数量(总是正数,方向由ChangeType决定)
	QuantityBefore int
	QuantityAfter  int
	ReservedBefore int
	ReservedAfter  int
	Reference      string // 订单号或操作说明
	CreatedAt      time.Time
}

// newLog 根据变更前后的快照生成日志
func newLog(changeType ChangeType, qty int, before, after Inventory, reference string, at time.Time) *Log {
	return &Log{
		ISBN:           after.ISBN,
		ChangeType:     changeType,
		Quantity:       qty,
		QuantityBefore: before.Quantity,
		QuantityAfter:  after.Quantity,
		ReservedBefore: before.QuantityReserved,
		ReservedAfter:  after.QuantityReserved,
		Reference:      reference,
		CreatedAt:      at,
	}
}
