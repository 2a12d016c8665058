package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-ledger/internal/application/order"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
	"github.com/xiebiao/bookstore-ledger/pkg/jwt"
	"github.com/xiebiao/bookstore-ledger/pkg/response"
)

const (
	ctxKeyUserID = "user_id"
	ctxKeyRole   = "role"
)

// TokenParser 解析Access Token
type TokenParser interface {
	ParseToken(tokenString string) (*jwt.Claims, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明:
// 1. 从Header提取Token
// 2. 验证Token有效性(签名、过期时间、签发者)
// 3. 将用户ID和角色注入Context
//
// 账号体系不在本服务内,Token由外部签发(或ledgerctl token生成),这里只做校验
type AuthMiddleware struct {
	tokens TokenParser
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth 要求登录
// 使用方式:
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
//	authorized.POST("/orders", handler.CreateOrder)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 格式:Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithCode(c, apperrors.ErrCodeUnauthorized, "请先登录")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}

		claims, err := m.tokens.ParseToken(parts[1])
		if err != nil {
			response.Error(c, err) // ErrTokenExpired / ErrInvalidToken
			c.Abort()
			return
		}
		if claims.UserID == 0 || claims.Role == "" {
			// Refresh Token不带角色,不能用来访问接口
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "无效的Token")
			c.Abort()
			return
		}

		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin 要求管理员角色,必须放在RequireAuth之后
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			response.ErrorWithCode(c, apperrors.ErrCodeForbidden, "无权限访问")
			c.Abort()
			return
		}
		c.Next()
	}
}

// =========================================
// Context辅助函数(供Handler使用)
// =========================================

// GetUserID 从Context获取当前登录用户ID,未登录返回0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ctxKeyUserID); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// IsAdmin 当前用户是否为管理员
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ctxKeyRole) == jwt.RoleAdmin
}

// MustGetUserID 从Context获取用户ID(如果不存在则panic)
// 说明:用于已经通过RequireAuth中间件的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}

// Actor 当前请求的操作者,传给订单用例做权限判断
func Actor(c *gin.Context) order.Actor {
	return order.Actor{UserID: MustGetUserID(c), Admin: IsAdmin(c)}
}
