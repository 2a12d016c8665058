package price

import (
	"time"

	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// 价格领域错误定义
var (
	// ErrPriceNotFound 指定时刻没有生效的价格
	ErrPriceNotFound = apperrors.New(apperrors.ErrCodePriceNotFound, "没有生效的价格")

	// ErrInvalidUnitPrice 单价不合法
	ErrInvalidUnitPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "单价必须大于0且最多两位小数")

	// ErrInvalidEffectiveAt 生效时间早于(或等于)当前记录的开始时间
	ErrInvalidEffectiveAt = apperrors.New(apperrors.ErrCodeInvalidParams, "生效时间必须晚于当前价格的生效时间")

	// ErrRecordClosed 记录已关闭
	ErrRecordClosed = apperrors.New(apperrors.ErrCodeBusinessError, "价格记录已关闭")

	// ErrOverlappingPrices 同一时刻有多条生效记录(数据不一致,不能静默选择其中一条)
	ErrOverlappingPrices = apperrors.New(apperrors.ErrCodeInternal, "价格区间重叠")
)

func priceNotFound(isbn string, asOf time.Time) error {
	return apperrors.Newf(apperrors.ErrCodePriceNotFound,
		"图书 %s 在 %s 没有生效的价格", isbn, asOf.Format(time.RFC3339))
}

func overlapping(isbn string, n int) error {
	return apperrors.Newf(apperrors.ErrCodeInternal, "图书 %s 有 %d 条同时生效的价格记录", isbn, n)
}
