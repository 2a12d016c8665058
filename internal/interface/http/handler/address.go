package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appaddress "github.com/xiebiao/bookstore-ledger/internal/application/address"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
	"github.com/xiebiao/bookstore-ledger/pkg/response"
	"github.com/xiebiao/bookstore-ledger/pkg/validator"
)

// AddressHandler 地址HTTP处理器
type AddressHandler struct {
	createAddress *appaddress.CreateAddressUseCase
	listAddresses *appaddress.ListAddressesUseCase
}

// NewAddressHandler 创建地址处理器
func NewAddressHandler(createAddress *appaddress.CreateAddressUseCase, listAddresses *appaddress.ListAddressesUseCase) *AddressHandler {
	return &AddressHandler{createAddress: createAddress, listAddresses: listAddresses}
}

// CreateAddress 新增地址
// @Summary      新增地址
// @Description  用户的第一个地址自动成为主地址
// @Tags         地址模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path int true "用户ID"
// @Param        request body dto.CreateAddressRequest true "地址信息"
// @Success      201 {object} response.Response{data=dto.AddressResponse}
// @Failure      403 {object} response.Response "只能操作自己的地址"
// @Router       /users/{user_id}/addresses [post]
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+validator.Describe(err))
		return
	}

	a, err := h.createAddress.Execute(c.Request.Context(), appaddress.CreateAddressRequest{
		UserID:      userID,
		Street:      req.Street,
		BuildingNr:  req.BuildingNr,
		ApartmentNr: req.ApartmentNr,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		IsPrimary:   req.IsPrimary,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewAddressResponse(a))
}

// ListAddresses 地址列表
// @Summary      地址列表
// @Tags         地址模块
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path int true "用户ID"
// @Success      200 {object} response.Response{data=[]dto.AddressResponse}
// @Router       /users/{user_id}/addresses [get]
func (h *AddressHandler) ListAddresses(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	addrs, err := h.listAddresses.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewAddressListResponse(addrs))
}

// pathUserID 解析路径中的user_id,非本人且非管理员时拒绝
func pathUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: user_id非法")
		return 0, false
	}
	userID := uint(id)
	if userID != middleware.MustGetUserID(c) && !middleware.IsAdmin(c) {
		response.ErrorWithCode(c, apperrors.ErrCodeForbidden, "无权限访问")
		return 0, false
	}
	return userID, true
}
