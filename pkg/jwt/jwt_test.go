package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(7, RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 3600, pair.ExpiresIn)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "7", claims.Subject)
}

func TestManager_DefaultRole(t *testing.T) {
	m := NewManager("test-secret", time.Hour, time.Hour)

	pair, err := m.GenerateToken(1, "")
	require.NoError(t, err)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestManager_ParseToken_Errors(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, time.Hour)

	pair, err := m.GenerateToken(1, RoleCustomer)
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	other := NewManager("another-secret", time.Hour, time.Hour)
	pair, err = other.GenerateToken(1, RoleCustomer)
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = m.ParseToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestManager_RefreshAccessToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(3, RoleAdmin)
	require.NoError(t, err)

	access, err := m.RefreshAccessToken(pair.RefreshToken, RoleCustomer)
	require.NoError(t, err)

	claims, err := m.ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, RoleCustomer, claims.Role)
}
