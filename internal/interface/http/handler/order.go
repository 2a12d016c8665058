package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookstore-ledger/internal/application/order"
	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
	"github.com/xiebiao/bookstore-ledger/pkg/response"
	"github.com/xiebiao/bookstore-ledger/pkg/validator"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createOrder     *apporder.CreateOrderUseCase
	getOrder        *apporder.GetOrderUseCase
	listOrders      *apporder.ListOrdersUseCase
	updateAddresses *apporder.UpdateAddressesUseCase
	changeStatus    *apporder.ChangeStatusUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrder *apporder.CreateOrderUseCase,
	getOrder *apporder.GetOrderUseCase,
	listOrders *apporder.ListOrdersUseCase,
	updateAddresses *apporder.UpdateAddressesUseCase,
	changeStatus *apporder.ChangeStatusUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrder:     createOrder,
		getOrder:        getOrder,
		listOrders:      listOrders,
		updateAddresses: updateAddresses,
		changeStatus:    changeStatus,
	}
}

// CreateOrder 创建订单
// @Summary      创建订单
// @Description  校验地址归属、按下单时刻取价、锁库存并预留,全部在一个事务中完成
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单信息"
// @Success      201 {object} response.Response{data=dto.OrderResponse} "下单成功"
// @Failure      400 {object} response.Response "参数错误或地址不属于同一用户"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "地址/图书/价格不存在"
// @Failure      409 {object} response.Response "库存不足或并发冲突"
// @Failure      504 {object} response.Response "事务超时"
// @Router       /orders [post]
//
// 教学说明:防超卖
// 1. 同一事务里按ISBN排序锁定库存行(SELECT ... FOR UPDATE),避免死锁
// 2. 可售数量 = 总量 - 已预留,预留不足直接失败,不会部分预留
// 3. 死锁/锁等待超时按指数退避重试,用户感知到的只是稍慢
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+validator.Describe(err))
		return
	}

	items := make([]apporder.CreateOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.CreateOrderItem{
			ISBN:     item.ISBN,
			Quantity: item.Quantity,
		}
	}

	o, err := h.createOrder.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		Actor:             middleware.Actor(c),
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		Items:             items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewOrderResponse(o))
}

// GetOrder 订单详情
// @Summary      订单详情
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      403 {object} response.Response "不是自己的订单"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathOrderID(c)
	if !ok {
		return
	}

	o, err := h.getOrder.Execute(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// ListOrders 我的订单
// @Summary      我的订单
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+validator.Describe(err))
		return
	}

	orders, total, err := h.listOrders.Execute(c.Request.Context(), middleware.Actor(c), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, pageSize := req.Page, req.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	response.Success(c, response.NewPageData(dto.NewOrderListResponse(orders), total, page, pageSize))
}

// UpdateAddresses 修改订单地址
// @Summary      修改订单地址
// @Description  新地址同样要属于同一用户且就是订单主人;发货后不可修改
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdateAddressesRequest true "新地址"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      400 {object} response.Response "地址不属于同一用户或订单已发货"
// @Router       /orders/{id}/addresses [patch]
func (h *OrderHandler) UpdateAddresses(c *gin.Context) {
	id, ok := pathOrderID(c)
	if !ok {
		return
	}

	var req dto.UpdateAddressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+validator.Describe(err))
		return
	}

	o, err := h.updateAddresses.Execute(c.Request.Context(), apporder.UpdateAddressesRequest{
		Actor:             middleware.Actor(c),
		OrderID:           id,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// ChangeStatus 订单状态流转
// @Summary      订单状态流转
// @Description  paid/cancelled:订单主人或管理员;shipped/completed:仅管理员。取消会释放库存预留
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.ChangeStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      400 {object} response.Response "状态转换非法"
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathOrderID(c)
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+validator.Describe(err))
		return
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	o, err := h.changeStatus.Execute(c.Request.Context(), middleware.Actor(c), id, target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

func pathOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: 订单ID非法")
		return 0, false
	}
	return uint(id), true
}
