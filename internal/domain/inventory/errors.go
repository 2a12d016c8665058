package inventory

import (
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrInventoryNotFound 库存记录不存在
	ErrInventoryNotFound = apperrors.New(apperrors.ErrCodeInventoryNotFound, "库存记录不存在")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.ErrInsufficientStock

	// ErrDuplicateInventory 该图书已有库存记录
	ErrDuplicateInventory = apperrors.New(apperrors.ErrCodeDuplicateEntry, "库存记录已存在")

	// ErrInvalidQuantity 数量必须大于0
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInvariantViolated 预留数量越界(0 <= reserved <= quantity 被破坏)
	ErrInvariantViolated = apperrors.New(apperrors.ErrCodeInternal, "库存不变量被破坏")

	// ErrGuardRejected 条件更新没有命中行
	// 仓储层返回,账本把它翻译成具体的业务错误
	ErrGuardRejected = apperrors.New(apperrors.ErrCodeConcurrencyConflict, "库存条件更新未命中")
)

// insufficientStock 带ISBN和数量的库存不足错误
// errors.Is(err, ErrInsufficientStock) 仍然成立
func insufficientStock(isbn string, available, requested int) error {
	return apperrors.Newf(apperrors.ErrCodeInsufficientStock,
		"图书 %s 库存不足: 可售 %d, 需要 %d", isbn, available, requested)
}

func releaseExceedsReserved(isbn string, reserved, requested int) error {
	return apperrors.Newf(apperrors.ErrCodeInternal,
		"图书 %s 释放数量 %d 超过已预留数量 %d", isbn, requested, reserved)
}
