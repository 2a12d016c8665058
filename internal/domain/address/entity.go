package address

import (
	"strings"
	"time"
)

// DefaultCountry 未填写国家时的默认值
const DefaultCountry = "Polska"

// Address 用户地址
// 每个用户最多一个主地址(IsPrimary)
type Address struct {
	ID          uint
	UserID      uint
	Street      string
	BuildingNr  string
	ApartmentNr string // 可选
	City        string
	PostalCode  string
	Country     string
	IsPrimary   bool
	CreatedAt   time.Time
}

// NewAddress 创建地址(工厂方法)
func NewAddress(userID uint, street, buildingNr, apartmentNr, city, postalCode, country string, isPrimary bool) (*Address, error) {
	if userID == 0 {
		return nil, ErrInvalidOwner
	}

	a := &Address{
		UserID:      userID,
		Street:      strings.TrimSpace(street),
		BuildingNr:  strings.TrimSpace(buildingNr),
		ApartmentNr: strings.TrimSpace(apartmentNr),
		City:        strings.TrimSpace(city),
		PostalCode:  strings.TrimSpace(postalCode),
		Country:     strings.TrimSpace(country),
		IsPrimary:   isPrimary,
	}
	if a.Country == "" {
		a.Country = DefaultCountry
	}

	if a.Street == "" || a.BuildingNr == "" || a.City == "" || a.PostalCode == "" {
		return nil, ErrIncompleteAddress
	}
	return a, nil
}

// IsOwnedBy 地址是否属于userID
func (a *Address) IsOwnedBy(userID uint) bool {
	return a.UserID == userID
}
