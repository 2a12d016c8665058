package address

import (
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// 地址领域错误定义
var (
	// ErrAddressNotFound 地址不存在
	ErrAddressNotFound = apperrors.New(apperrors.ErrCodeAddressNotFound, "地址不存在")

	// ErrAddressOwnerMismatch 收货地址和账单地址属于不同用户
	ErrAddressOwnerMismatch = apperrors.New(apperrors.ErrCodeAddressOwnerMismatch, "收货地址与账单地址必须属于同一用户")

	// ErrInvalidAddressID 地址ID为空
	ErrInvalidAddressID = apperrors.New(apperrors.ErrCodeInvalidParams, "地址ID不能为空")

	// ErrIncompleteAddress 地址信息不完整
	ErrIncompleteAddress = apperrors.New(apperrors.ErrCodeInvalidParams, "街道、门牌号、城市、邮编均不能为空")

	// ErrInvalidOwner 地址必须关联用户
	ErrInvalidOwner = apperrors.New(apperrors.ErrCodeInvalidParams, "地址必须关联用户")
)

func addressNotFound(id uint) error {
	return apperrors.Newf(apperrors.ErrCodeAddressNotFound, "地址 %d 不存在", id)
}

func ownerMismatch(shippingID, billingID uint) error {
	return apperrors.Newf(apperrors.ErrCodeAddressOwnerMismatch,
		"收货地址 %d 与账单地址 %d 不属于同一用户", shippingID, billingID)
}
