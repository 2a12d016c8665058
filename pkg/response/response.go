// Package response 统一的HTTP响应信封 {code, message, data}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

// RequestIDKey 请求ID在gin.Context里的key(由RequestID中间件写入)
const RequestIDKey = "request_id"

// Response 统一响应结构
// 设计说明:
// 1. Code是业务错误码(非HTTP状态码),0表示成功
// 2. HTTP状态码由Code推导,见errors.HTTPStatus
// 3. 失败时带上request_id,用户反馈问题时可以直接定位日志
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Message: "success", Data: data})
}

// Created 201,用于下单、上架等创建资源的接口
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Message: "created", Data: data})
}

// Error 错误响应
// 非AppError一律按内部错误处理,不把底层错误信息返回给客户端:
//
//	o, err := createOrder.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	// 底层错误挂到gin.Context上,由日志中间件统一输出
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	ErrorWithCode(c, appErr.Code, appErr.Message)
}

// ErrorWithCode 自定义错误码和消息(参数绑定失败、鉴权失败等)
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(apperrors.HTTPStatus(code), Response{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	})
}

// PageData 分页数据
type PageData struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// NewPageData 创建分页数据,TotalPages向上取整
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	var totalPages int
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
