package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较
// 教学要点:
// 1. 领域层返回的往往是"带上下文"的新错误(如库存不足时带上ISBN)
// 2. 调用方仍然可以用errors.Is(err, ErrInsufficientStock)判断类别
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf 格式化创建AppError
func Newf(code int, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithCode 用指定错误码包装底层错误
func WithCode(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeMQError       = 50003 // 消息队列错误
	ErrCodeTimeout       = 50004 // 事务超时

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized = 40100 // 未登录
	ErrCodeInvalidToken = 40101 // Token无效
	ErrCodeTokenExpired = 40102 // Token过期
	ErrCodeForbidden    = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound          = 40400 // 资源不存在(通用)
	ErrCodeBookNotFound      = 40402 // 图书不存在
	ErrCodeOrderNotFound     = 40403 // 订单不存在
	ErrCodePriceNotFound     = 40404 // 没有生效的价格
	ErrCodeAddressNotFound   = 40405 // 地址不存在
	ErrCodeInventoryNotFound = 40406 // 库存记录不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError        = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock    = 40001 // 库存不足
	ErrCodeInvalidOrderStatus   = 40002 // 订单状态非法
	ErrCodeISBNDuplicate        = 40004 // ISBN已存在
	ErrCodeAddressOwnerMismatch = 40006 // 收货/账单地址不属于同一用户
	ErrCodeDuplicateEntry       = 40009 // 重复记录(通用)
	ErrCodeConcurrencyConflict  = 40010 // 并发冲突(死锁/锁等待超时),可重试

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")
	ErrTimeout       = New(ErrCodeTimeout, "事务执行超时")

	// 认证授权
	ErrUnauthorized = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "Token已过期")
	ErrForbidden    = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrNotFound = New(ErrCodeNotFound, "资源不存在")

	// 业务规则
	ErrInsufficientStock   = New(ErrCodeInsufficientStock, "库存不足")
	ErrInvalidOrderStatus  = New(ErrCodeInvalidOrderStatus, "订单状态不允许此操作")
	ErrDuplicateEntry      = New(ErrCodeDuplicateEntry, "记录已存在")
	ErrConcurrencyConflict = New(ErrCodeConcurrencyConflict, "并发冲突,请重试")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// IsRetryable 是否为可重试的并发冲突
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// HTTPStatus 错误码 → HTTP状态码
// 教学要点:
// 1. 响应体里的code依然是业务码,HTTP状态码只做粗分类
// 2. 库存不足/并发冲突用409,方便网关和客户端区分"稍后重试"
func HTTPStatus(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code == ErrCodeUnauthorized, code == ErrCodeInvalidToken, code == ErrCodeTokenExpired:
		return http.StatusUnauthorized
	case code == ErrCodeForbidden:
		return http.StatusForbidden
	case code == ErrCodeInsufficientStock, code == ErrCodeConcurrencyConflict,
		code == ErrCodeISBNDuplicate, code == ErrCodeDuplicateEntry, code == ErrCodeInvalidOrderStatus:
		return http.StatusConflict
	case code == ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
