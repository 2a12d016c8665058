package address

import (
	"context"
	"errors"
)

// OwnershipGuard 地址归属校验
//
// 规则:一个订单的收货地址和账单地址必须属于同一个用户,
// 订单的归属用户就是这两个地址的共同主人。
// 两个ID相同是合法的(收货即账单)。
type OwnershipGuard struct {
	repo Repository
}

// NewOwnershipGuard 创建校验器
func NewOwnershipGuard(repo Repository) *OwnershipGuard {
	return &OwnershipGuard{repo: repo}
}

// Validate 校验并返回地址的共同主人
// 错误:
// - ID为0 → ErrInvalidAddressID
// - 地址不存在 → ErrAddressNotFound(带ID)
// - 主人不同 → ErrAddressOwnerMismatch
func (g *OwnershipGuard) Validate(ctx context.Context, shippingID, billingID uint) (uint, error) {
	if shippingID == 0 || billingID == 0 {
		return 0, ErrInvalidAddressID
	}

	shipping, err := g.load(ctx, shippingID)
	if err != nil {
		return 0, err
	}
	if billingID == shippingID {
		return shipping.UserID, nil
	}

	billing, err := g.load(ctx, billingID)
	if err != nil {
		return 0, err
	}

	if !billing.IsOwnedBy(shipping.UserID) {
		return 0, ownerMismatch(shippingID, billingID)
	}
	return shipping.UserID, nil
}

func (g *OwnershipGuard) load(ctx context.Context, id uint) (*Address, error) {
	a, err := g.repo.FindByID(ctx, id)
	if errors.Is(err, ErrAddressNotFound) {
		return nil, addressNotFound(id)
	}
	return a, err
}
