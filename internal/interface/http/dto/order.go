package dto

import (
	"github.com/xiebiao/bookstore-ledger/internal/domain/order"
)

// CreateOrderRequest HTTP下单请求
// 明细顺序有意义:库存不足时报告第一个无法满足的图书
type CreateOrderRequest struct {
	ShippingAddressID uint                     `json:"shipping_address_id" binding:"required" example:"1"`
	BillingAddressID  uint                     `json:"billing_address_id" binding:"required" example:"1"`
	Items             []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderItemRequest 订单明细项
type CreateOrderItemRequest struct {
	ISBN     string `json:"isbn" binding:"required,isbn" example:"9780132350884"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=999" example:"4"`
}

// OrderResponse 订单(含明细)
type OrderResponse struct {
	OrderID           uint                 `json:"order_id" example:"1"`
	OrderNo           string               `json:"order_no" example:"ORD1717236000000123456"`
	OwnerID           uint                 `json:"owner_id" example:"1"`
	Status            string               `json:"status" example:"pending"`
	ShippingAddressID uint                 `json:"shipping_address_id" example:"1"`
	BillingAddressID  uint                 `json:"billing_address_id" example:"1"`
	TotalAmount       string               `json:"total_amount" example:"119.96"`
	Items             []*OrderItemResponse `json:"items"`
	CreatedAt         string               `json:"created_at"`
	PaidAt            string               `json:"paid_at,omitempty"`
	ShippedAt         string               `json:"shipped_at,omitempty"`
}

// OrderItemResponse 订单明细
type OrderItemResponse struct {
	ISBN      string `json:"isbn" example:"9780132350884"`
	PriceID   uint   `json:"price_id" example:"1"`
	UnitPrice string `json:"unit_price" example:"29.99"`
	Quantity  int    `json:"quantity" example:"4"`
	Subtotal  string `json:"subtotal" example:"119.96"`
}

// NewOrderResponse 订单 → 响应
func NewOrderResponse(o *order.Order) *OrderResponse {
	items := make([]*OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = &OrderItemResponse{
			ISBN:      item.ISBN,
			PriceID:   item.PriceID,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal().StringFixed(2),
		}
	}
	return &OrderResponse{
		OrderID:           o.ID,
		OrderNo:           o.OrderNo,
		OwnerID:           o.OwnerID,
		Status:            o.Status.String(),
		ShippingAddressID: o.ShippingAddressID,
		BillingAddressID:  o.BillingAddressID,
		TotalAmount:       o.Total.StringFixed(2),
		Items:             items,
		CreatedAt:         FormatTime(o.CreatedAt),
		PaidAt:            formatTimePtr(o.PaidAt),
		ShippedAt:         formatTimePtr(o.ShippedAt),
	}
}

// NewOrderListResponse 订单列表
func NewOrderListResponse(orders []*order.Order) []*OrderResponse {
	out := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = NewOrderResponse(o)
	}
	return out
}

// ListOrdersRequest 订单列表查询参数
type ListOrdersRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// UpdateAddressesRequest 修改订单地址
type UpdateAddressesRequest struct {
	ShippingAddressID uint `json:"shipping_address_id" binding:"required" example:"2"`
	BillingAddressID  uint `json:"billing_address_id" binding:"required" example:"2"`
}

// ChangeStatusRequest 订单状态流转
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=paid shipped completed cancelled" example:"paid"`
}
