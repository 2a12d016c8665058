package order

import (
	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// Actor 发起操作的用户(从JWT中提取)
type Actor struct {
	UserID uint
	Admin  bool
}

// SystemActor 后台任务/命令行使用,不做归属检查
var SystemActor = Actor{Admin: true}

// authorize 只有订单主人和管理员可以操作订单
func (a Actor) authorize(o *order.Order) error {
	if a.Admin || o.IsOwnedBy(a.UserID) {
		return nil
	}
	return apperrors.ErrForbidden
}

// authorizeOwner 地址的主人必须是操作者本人
func (a Actor) authorizeOwner(ownerID uint) error {
	if a.Admin || ownerID == a.UserID {
		return nil
	}
	return apperrors.ErrForbidden
}
