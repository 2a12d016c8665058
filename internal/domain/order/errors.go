package order

import (
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrUnknownStatus 未知状态名
	ErrUnknownStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的订单状态")

	// ErrInvalidOrderItems 订单明细为空
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrDuplicateItem 同一ISBN在订单中出现多次
	ErrDuplicateItem = apperrors.New(apperrors.ErrCodeInvalidParams, "同一图书在订单中只能出现一次")

	// ErrAddressesLocked 已发货的订单不能修改地址
	ErrAddressesLocked = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单已发货,不能修改地址")

	// ErrOwnerChanged 修改地址后订单归属发生变化
	ErrOwnerChanged = apperrors.New(apperrors.ErrCodeAddressOwnerMismatch, "新地址必须属于订单所属用户")
)

func invalidTransition(from, to OrderStatus) error {
	return apperrors.Newf(apperrors.ErrCodeInvalidOrderStatus, "订单状态不能从 %s 变为 %s", from, to)
}
