package address

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo map[uint]*Address

func (s stubRepo) Create(_ context.Context, a *Address) error { return nil }

func (s stubRepo) FindByID(_ context.Context, id uint) (*Address, error) {
	a, ok := s[id]
	if !ok {
		return nil, ErrAddressNotFound
	}
	return a, nil
}

func (s stubRepo) ListByUser(_ context.Context, userID uint) ([]*Address, error) { return nil, nil }

func (s stubRepo) LockByUser(_ context.Context, userID uint) ([]*Address, error) { return nil, nil }
func (s stubRepo) ClearPrimary(_ context.Context, userID uint) error { return nil }

func TestOwnershipGuard_Validate(t *testing.T) {
	repo := stubRepo{
		1: {ID: 1, UserID: 7},
		2: {ID: 2, UserID: 7},
		3: {ID: 3, UserID: 8},
	}
	guard := NewOwnershipGuard(repo)
	ctx := context.Background()

	tests := []struct {
		name      string
		shipping  uint
		billing   uint
		wantOwner uint
		wantErr   error
	}{
		{"同一用户的两个地址", 1, 2, 7, nil},
		{"收货即账单", 3, 3, 8, nil},
		{"不同用户", 1, 3, 0, ErrAddressOwnerMismatch},
		{"收货地址不存在", 99, 1, 0, ErrAddressNotFound},
		{"账单地址不存在", 1, 99, 0, ErrAddressNotFound},
		{"空ID", 0, 1, 0, ErrInvalidAddressID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, err := guard.Validate(ctx, tt.shipping, tt.billing)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
		})
	}
}

func TestOwnershipGuard_NotFoundNamesID(t *testing.T) {
	guard := NewOwnershipGuard(stubRepo{1: {ID: 1, UserID: 7}})

	_, err := guard.Validate(context.Background(), 1, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42")
}

func TestNewAddress(t *testing.T) {
	a, err := NewAddress(7, " Marszałkowska ", "10", "", "Warszawa", "00-001", "", true)
	require.NoError(t, err)
	assert.Equal(t, "Marszałkowska", a.Street)
	assert.Equal(t, DefaultCountry, a.Country)
	assert.True(t, a.IsPrimary)

	_, err = NewAddress(7, "", "10", "", "Warszawa", "00-001", "", false)
	assert.ErrorIs(t, err, ErrIncompleteAddress)

	_, err = NewAddress(0, "Street", "10", "", "Warszawa", "00-001", "", false)
	assert.ErrorIs(t, err, ErrInvalidOwner)
}
