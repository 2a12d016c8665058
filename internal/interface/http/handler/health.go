package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger 依赖的健康检查(数据库、Redis)
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc 函数适配成Pinger
type PingerFunc func(ctx context.Context) error

// PingContext 实现Pinger
func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler 存活/就绪检查
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Ping 存活检查
// @Summary      存活检查
// @Tags         系统
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Ready 就绪检查:逐个探测依赖,任一失败返回503
// @Summary      就绪检查
// @Tags         系统
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.PingContext(ctx); err != nil {
			result[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}
	c.JSON(status, result)
}
