package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/greenbasket/internal/models"
)

func TestFreshnessOpen(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("never activated is closed", func(t *testing.T) {
		assert.False(t, FreshnessOpen(now, nil, 6))
	})

	t.Run("zero expiry hours is closed", func(t *testing.T) {
		at := now.Add(-time.Hour)
		assert.False(t, FreshnessOpen(now, &at, 0))
	})

	t.Run("inside the window", func(t *testing.T) {
		at := now.Add(-5 * time.Hour)
		assert.True(t, FreshnessOpen(now, &at, 6))
	})

	t.Run("window edge is closed", func(t *testing.T) {
		at := now.Add(-6 * time.Hour)
		assert.False(t, FreshnessOpen(now, &at, 6))
	})

	t.Run("past the window", func(t *testing.T) {
		at := now.Add(-7 * time.Hour)
		assert.False(t, FreshnessOpen(now, &at, 6))
	})
}

func TestVariantAvailable(t *testing.T) {
	now := time.Now()
	activated := now.Add(-time.Hour)

	shelf := &models.Product{IsActive: true}
	fresh := &models.Product{IsActive: true, IsReadyToEat: true, ActivatedAt: &activated, ExpiryHours: 6}
	stale := &models.Product{IsActive: true, IsReadyToEat: true, ActivatedAt: &activated, ExpiryHours: 1}
	inStock := &models.ProductVariant{Stock: 3}
	outOfStock := &models.ProductVariant{Stock: 0}

	assert.True(t, VariantAvailable(shelf, inStock, now))
	assert.False(t, VariantAvailable(shelf, outOfStock, now))
	assert.False(t, VariantAvailable(&models.Product{IsActive: false}, inStock, now))
	assert.True(t, VariantAvailable(fresh, inStock, now))
	assert.False(t, VariantAvailable(stale, inStock, now))
	assert.False(t, VariantAvailable(nil, inStock, now))
	assert.False(t, VariantAvailable(shelf, nil, now))
}
