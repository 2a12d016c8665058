package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-ledger/internal/application/catalog"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
	"github.com/xiebiao/bookstore-ledger/pkg/response"
	"github.com/xiebiao/bookstore-ledger/pkg/validator"
)

// CatalogHandler 图书目录HTTP处理器(上架、查询、调价、补货)
type CatalogHandler struct {
	publishBook   *catalog.PublishBookUseCase
	getBook       *catalog.GetBookUseCase
	setPrice      *catalog.SetPriceUseCase
	priceHistory  *catalog.PriceHistoryUseCase
	restock       *catalog.RestockUseCase
	inventoryLogs *catalog.InventoryLogsUseCase
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(
	publishBook *catalog.PublishBookUseCase,
	getBook *catalog.GetBookUseCase,
	setPrice *catalog.SetPriceUseCase,
	priceHistory *catalog.PriceHistoryUseCase,
	restock *catalog.RestockUseCase,
	inventoryLogs *catalog.InventoryLogsUseCase,
) *CatalogHandler {
	return &CatalogHandler{
		publishBook:   publishBook,
		getBook:       getBook,
		setPrice:      setPrice,
		priceHistory:  priceHistory,
		restock:       restock,
		inventoryLogs: inventoryLogs,
	}
}

// PublishBook 上架图书
// @Summary      上架图书
// @Description  创建图书、首条价格记录和库存(管理员),三者在同一事务中写入
// @Tags         图书模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookResponse} "上架成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "无权限"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /books [post]
func (h *CatalogHandler) PublishBook(c *gin.Context) {
	var req dto.PublishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+validator.Describe(err))
		return
	}

	snapshot, err := h.publishBook.Execute(c.Request.Context(), catalog.PublishBookRequest{
		ISBN:             req.ISBN,
		Title:            req.Title,
		PublicationYear:  req.PublicationYear,
		UnitPrice:        req.UnitPrice,
		InitialStock:     req.InitialStock,
		ReorderThreshold: req.ReorderThreshold,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewBookResponse(snapshot))
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  图书、当前价格和可售数量。展示用快照,可能有秒级延迟
// @Tags         图书模块
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{isbn} [get]
func (h *CatalogHandler) GetBook(c *gin.Context) {
	snapshot, err := h.getBook.Execute(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(snapshot))
}

// PriceHistory 价格历史
// @Summary      价格历史
// @Tags         图书模块
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=[]dto.PriceRecordResponse}
// @Router       /books/{isbn}/prices [get]
func (h *CatalogHandler) PriceHistory(c *gin.Context) {
	records, err := h.priceHistory.Execute(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPriceHistoryResponse(records))
}

// SetPrice 调价
// @Summary      调价
// @Description  关闭当前价格记录并追加新记录(管理员)。已下单的订单不受影响
// @Tags         图书模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        isbn path string true "ISBN"
// @Param        request body dto.SetPriceRequest true "新价格"
// @Success      200 {object} response.Response{data=dto.PriceRecordResponse}
// @Failure      400 {object} response.Response "价格或生效时间非法"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /books/{isbn}/price [put]
func (h *CatalogHandler) SetPrice(c *gin.Context) {
	var req dto.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+validator.Describe(err))
		return
	}

	var effectiveAt time.Time
	if req.EffectiveAt != nil {
		effectiveAt = *req.EffectiveAt
	}

	record, err := h.setPrice.Execute(c.Request.Context(), catalog.SetPriceRequest{
		ISBN:        c.Param("isbn"),
		UnitPrice:   req.UnitPrice,
		EffectiveAt: effectiveAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewPriceRecordResponse(record))
}

// Restock 补货
// @Summary      补货
// @Tags         图书模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        isbn path string true "ISBN"
// @Param        request body dto.RestockRequest true "补货数量"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Failure      404 {object} response.Response "库存记录不存在"
// @Router       /books/{isbn}/restock [post]
func (h *CatalogHandler) Restock(c *gin.Context) {
	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+validator.Describe(err))
		return
	}

	inv, err := h.restock.Execute(c.Request.Context(), catalog.RestockRequest{
		ISBN:      c.Param("isbn"),
		Added:     req.Added,
		Reference: req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewInventoryResponse(inv))
}

// InventoryLogs 库存变更日志
// @Summary      库存变更日志
// @Description  最近的预留/释放/补货记录(管理员),用于对账
// @Tags         图书模块
// @Produce      json
// @Security     BearerAuth
// @Param        isbn path string true "ISBN"
// @Param        limit query int false "条数" default(50)
// @Success      200 {object} response.Response{data=[]dto.InventoryLogResponse}
// @Router       /books/{isbn}/inventory-logs [get]
func (h *CatalogHandler) InventoryLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: limit取值1-500")
		return
	}

	logs, err := h.inventoryLogs.Execute(c.Request.Context(), c.Param("isbn"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewInventoryLogsResponse(logs))
}
