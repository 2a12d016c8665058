package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
	"github.com/xiebiao/bookstore-ledger/pkg/response"
	"github.com/xiebiao/bookstore-ledger/pkg/tracing"
)

// HeaderRequestID 请求ID的Header
const HeaderRequestID = "X-Request-ID"

const ctxKeyRequestID = response.RequestIDKey

// slowRequest 超过该耗时记WARN
const slowRequest = 3 * time.Second

// RequestID 为每个请求生成(或沿用上游传入的)请求ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// GetRequestID 当前请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

// Logger 请求日志中间件
//
// 教学要点:
// 1. 记录方法、路由、状态码、耗时、客户端IP
// 2. 带上request_id和trace_id,排查时可以串起整条链路
// 3. 不记录请求体和Authorization头
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		// response.Error把内部错误挂到了c.Errors上
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			logger.Error("HTTP请求", fields...)
		case latency > slowRequest:
			logger.Warn("慢请求", fields...)
		default:
			logger.Info("HTTP请求", fields...)
		}
	}
}

// Recovery panic转成500并记录堆栈
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("请求处理panic",
			zap.String("request_id", GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		response.ErrorWithCode(c, apperrors.ErrCodeInternal, "系统内部错误")
		c.Abort()
	})
}
