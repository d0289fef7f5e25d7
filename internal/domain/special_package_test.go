package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountPercent(t *testing.T) {
	d, err := DiscountPercent(10000, 7500)
	require.NoError(t, err)
	assert.Equal(t, 25, d)

	d, err = DiscountPercent(3000, 1999)
	require.NoError(t, err)
	assert.Equal(t, 33, d)

	_, err = DiscountPercent(5000, 5000)
	assert.ErrorIs(t, err, ErrInvalidPackagePrice)
	_, err = DiscountPercent(5000, 6000)
	assert.ErrorIs(t, err, ErrInvalidPackagePrice)
	_, err = DiscountPercent(0, 0)
	assert.ErrorIs(t, err, ErrInvalidPackagePrice)
}

func TestSpecialPackage_NormalizeIgnoresClientDiscount(t *testing.T) {
	p := SpecialPackage{OriginalPrice: 20000, SpecialPrice: 15000, DiscountPercent: 90}
	require.NoError(t, p.Normalize())
	assert.Equal(t, 25, p.DiscountPercent)
	assert.Equal(t, "KZT", p.Currency)
}

func TestSpecialPackage_AvailableAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	from := now.Add(-24 * time.Hour)
	until := now.Add(24 * time.Hour)
	limit := 3

	p := SpecialPackage{IsActive: true, ValidFrom: &from, ValidUntil: &until, MaxUsage: &limit, UsageCount: 2}
	assert.True(t, p.AvailableAt(now))
	assert.False(t, p.AvailableAt(until.Add(time.Minute)))

	p.UsageCount = 3
	assert.False(t, p.AvailableAt(now))

	p.UsageCount = 0
	p.IsActive = false
	assert.False(t, p.AvailableAt(now))
}
