package shop_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wproject-studio/toko-admin/shop"
)

func TestTotalPrice(t *testing.T) {
	assert.Equal(t, int64(3_000_000), shop.TotalPrice(1_500_000, 2))
	assert.Equal(t, int64(0), shop.TotalPrice(1_500_000, 0))
	assert.Equal(t, int64(900_000), shop.TotalPrice(900_000, 1))

	// Large totals must not lose precision.
	assert.Equal(t, int64(999_999_999_000), shop.TotalPrice(999_999_999, 1000))
}

func TestFormatIDR(t *testing.T) {
	assert.Equal(t, "Rp 0", shop.FormatIDR(0))
	assert.Equal(t, "Rp 950", shop.FormatIDR(950))
	assert.Equal(t, "Rp 1.500", shop.FormatIDR(1500))
	assert.Equal(t, "Rp 1.500.000", shop.FormatIDR(1_500_000))
	assert.Equal(t, "Rp 12.345.678", shop.FormatIDR(12_345_678))
}

func TestParseStatus(t *testing.T) {
	s, err := shop.ParseStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, shop.StatusConfirmed, s)

	s, err = shop.ParseStatus("CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, shop.StatusCancelled, s)

	_, err = shop.ParseStatus("PENDING")
	assert.ErrorIs(t, err, shop.ErrInvalidStatus)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, shop.RoleAdmin.Valid())
	assert.True(t, shop.RoleStaff.Valid())
	assert.False(t, shop.Role("owner").Valid())
	assert.False(t, shop.Role("").Valid())
}

func TestInsufficientStockErrorUnwrap(t *testing.T) {
	err := &shop.InsufficientStockError{ProductID: 3, Available: 1, Requested: 5}
	assert.True(t, errors.Is(err, shop.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "product #3")
}
