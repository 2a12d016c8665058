package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	detailed := Newf(ErrCodeInsufficientStock, "图书 %s 库存不足", "9780132350884")

	assert.True(t, errors.Is(detailed, ErrInsufficientStock))
	assert.False(t, errors.Is(detailed, ErrConcurrencyConflict))

	wrapped := fmt.Errorf("下单失败: %w", detailed)
	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
}

func TestAppError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := Wrap(cause, "查询失败")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeInternal, err.Code)
	assert.Contains(t, err.Error(), "driver: bad connection")
}

func TestGetAppError(t *testing.T) {
	appErr := GetAppError(ErrForbidden)
	assert.Equal(t, ErrCodeForbidden, appErr.Code)

	plain := GetAppError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
}

func TestIsRetryable(t *testing.T) {
	conflict := WithCode(errors.New("Deadlock found"), ErrCodeConcurrencyConflict, "并发冲突")
	assert.True(t, IsRetryable(conflict))
	assert.False(t, IsRetryable(ErrInsufficientStock))
	assert.False(t, IsRetryable(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{0, http.StatusOK},
		{ErrCodeInvalidParams, http.StatusBadRequest},
		{ErrCodeAddressOwnerMismatch, http.StatusBadRequest},
		{ErrCodeBookNotFound, http.StatusNotFound},
		{ErrCodePriceNotFound, http.StatusNotFound},
		{ErrCodeInsufficientStock, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeDatabaseError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}
