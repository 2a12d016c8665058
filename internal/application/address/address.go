// Package address 用户地址用例
package address

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-ledger/internal/domain/address"
	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
)

// CreateAddressUseCase 新增地址
// 每个用户最多一个主地址:新主地址和"取消旧主地址"在同一事务里完成
type CreateAddressUseCase struct {
	repo   address.Repository
	tx     shared.Transactor
	logger *zap.Logger
}

// NewCreateAddressUseCase 创建新增地址用例
func NewCreateAddressUseCase(repo address.Repository, tx shared.Transactor, logger *zap.Logger) *CreateAddressUseCase {
	return &CreateAddressUseCase{repo: repo, tx: tx, logger: logger}
}

// CreateAddressRequest 新增地址请求
type CreateAddressRequest struct {
	UserID      uint
	Street      string
	BuildingNr  string
	ApartmentNr string
	City        string
	PostalCode  string
	Country     string
	IsPrimary   bool
}

// Execute 执行新增
// 用户的第一个地址自动成为主地址
func (uc *CreateAddressUseCase) Execute(ctx context.Context, req CreateAddressRequest) (*address.Address, error) {
	a, err := address.NewAddress(req.UserID, req.Street, req.BuildingNr, req.ApartmentNr,
		req.City, req.PostalCode, req.Country, req.IsPrimary)
	if err != nil {
		return nil, err
	}

	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		// 锁住该用户的地址行,同一用户的并发新增在这里排队
		existing, err := uc.repo.LockByUser(txCtx, a.UserID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			a.IsPrimary = true
		}
		// 不依赖existing判断是否有旧主地址:带条件的UPDATE本身是当前读
		if a.IsPrimary {
			if err := uc.repo.ClearPrimary(txCtx, a.UserID); err != nil {
				return err
			}
		}
		return uc.repo.Create(txCtx, a)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("新增地址",
		zap.Uint("address_id", a.ID),
		zap.Uint("user_id", a.UserID),
		zap.Bool("primary", a.IsPrimary),
	)
	return a, nil
}

// ListAddressesUseCase 地址列表
type ListAddressesUseCase struct {
	repo address.Repository
}

// NewListAddressesUseCase 创建地址列表用例
func NewListAddressesUseCase(repo address.Repository) *ListAddressesUseCase {
	return &ListAddressesUseCase{repo: repo}
}

// Execute 主地址在前
func (uc *ListAddressesUseCase) Execute(ctx context.Context, userID uint) ([]*address.Address, error) {
	if userID == 0 {
		return nil, address.ErrInvalidOwner
	}
	return uc.repo.ListByUser(ctx, userID)
}
