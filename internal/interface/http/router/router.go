// Package router 组装gin路由
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/book"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-ledger/pkg/validator"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Catalog *handler.CatalogHandler
	Address *handler.AddressHandler
	Order   *handler.OrderHandler
	Health  *handler.HealthHandler
}

// Options 路由选项
type Options struct {
	Mode    string // debug | release | test
	Swagger bool   // 是否挂载/swagger
}

// New 创建gin引擎并注册全部路由
//
// 中间件顺序:RequestID → Recovery → Logger → Metrics → (Auth) → Handler
// RequestID最先执行,后面的日志和panic记录才能带上请求ID
func New(opts Options, h Handlers, auth *middleware.AuthMiddleware, logger *zap.Logger) (*gin.Engine, error) {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.Metrics(),
	)

	r.GET("/ping", h.Health.Ping)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// 图书:读公开,写需要管理员
	books := v1.Group("/books")
	{
		books.GET("/:isbn", h.Catalog.GetBook)
		books.GET("/:isbn/prices", h.Catalog.PriceHistory)

		admin := books.Group("", auth.RequireAuth(), auth.RequireAdmin())
		admin.POST("", h.Catalog.PublishBook)
		admin.PUT("/:isbn/price", h.Catalog.SetPrice)
		admin.POST("/:isbn/restock", h.Catalog.Restock)
		admin.GET("/:isbn/inventory-logs", h.Catalog.InventoryLogs)
	}

	users := v1.Group("/users", auth.RequireAuth())
	{
		users.POST("/:user_id/addresses", h.Address.CreateAddress)
		users.GET("/:user_id/addresses", h.Address.ListAddresses)
	}

	orders := v1.Group("/orders", auth.RequireAuth())
	{
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.ListOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.PATCH("/:id/addresses", h.Order.UpdateAddresses)
		orders.PATCH("/:id/status", h.Order.ChangeStatus)
	}

	return r, nil
}

// RegisterValidators 注册自定义binding tag
// gin的校验引擎是全局的,重复注册同一个tag会覆盖,可以多次调用
func RegisterValidators() error {
	if err := validator.RegisterStringRule("isbn", isbnRule); err != nil {
		return fmt.Errorf("注册isbn校验规则失败: %w", err)
	}
	return nil
}

// 允许带连字符/空格的书号,归一化后再校验
func isbnRule(s string) bool {
	return book.IsValidISBN(book.NormalizeISBN(s))
}
