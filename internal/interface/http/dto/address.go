package dto

import "github.com/xiebiao/bookstore-ledger/internal/domain/address"

// CreateAddressRequest 新增地址
type CreateAddressRequest struct {
	Street      string `json:"street" binding:"required,max=100" example:"Marszałkowska"`
	BuildingNr  string `json:"building_nr" binding:"required,max=10" example:"10"`
	ApartmentNr string `json:"apartment_nr" binding:"max=10" example:"5"`
	City        string `json:"city" binding:"required,max=60" example:"Warszawa"`
	PostalCode  string `json:"postal_code" binding:"required,max=10" example:"00-001"`
	Country     string `json:"country" binding:"max=60" example:"Polska"`
	IsPrimary   bool   `json:"is_primary" example:"true"`
}

// AddressResponse 地址
type AddressResponse struct {
	ID          uint   `json:"id" example:"1"`
	UserID      uint   `json:"user_id" example:"1"`
	Street      string `json:"street"`
	BuildingNr  string `json:"building_nr"`
	ApartmentNr string `json:"apartment_nr,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	IsPrimary   bool   `json:"is_primary"`
}

// NewAddressResponse 地址 → 响应
func NewAddressResponse(a *address.Address) *AddressResponse {
	return &AddressResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Street:      a.Street,
		BuildingNr:  a.BuildingNr,
		ApartmentNr: a.ApartmentNr,
		City:        a.City,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		IsPrimary:   a.IsPrimary,
	}
}

// NewAddressListResponse 地址列表
func NewAddressListResponse(addrs []*address.Address) []*AddressResponse {
	out := make([]*AddressResponse, len(addrs))
	for i, a := range addrs {
		out[i] = NewAddressResponse(a)
	}
	return out
}
