package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponUpdatesAllowsResetToZero(t *testing.T) {
	zero := 0.0
	updates, err := couponUpdates(&couponUpdateRequest{
		DiscountFlat: &zero,
		MaxDiscount:  &zero,
		MinSubtotal:  &zero,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, updates["discount_flat"])
	assert.Equal(t, 0.0, updates["max_discount"])
	assert.Equal(t, 0.0, updates["min_subtotal"])

	_, present := updates["discount_percent"]
	assert.False(t, present, "omitted fields must not be touched")
}

func TestCouponUpdatesValidation(t *testing.T) {
	over := 150.0
	_, err := couponUpdates(&couponUpdateRequest{DiscountPercent: &over})
	require.Error(t, err)

	negative := -1.0
	_, err = couponUpdates(&couponUpdateRequest{DiscountFlat: &negative})
	require.Error(t, err)

	_, err = couponUpdates(&couponUpdateRequest{})
	require.Error(t, err)
}

func TestCouponUpdatesPartialFields(t *testing.T) {
	active := false
	expiry := time.Now().Add(48 * time.Hour)
	updates, err := couponUpdates(&couponUpdateRequest{IsActive: &active, ExpiresAt: &expiry})
	require.NoError(t, err)

	assert.Equal(t, false, updates["is_active"])
	assert.Equal(t, expiry, updates["expires_at"])
	assert.Len(t, updates, 2)
}
