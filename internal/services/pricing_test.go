package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/greenbasket/internal/models"
)

func TestSellingPrice(t *testing.T) {
	tests := []struct {
		name    string
		base    float64
		percent float64
		flat    float64
		want    float64
	}{
		{"no discount", 100, 0, 0, 100},
		{"percent only", 200, 10, 0, 180},
		{"flat only", 150, 0, 30, 120},
		{"percent then flat", 100, 20, 5, 75},
		{"floored at zero", 50, 50, 40, 0},
		{"exactly zero", 100, 0, 100, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, SellingPrice(tc.base, tc.percent, tc.flat), 1e-9)
		})
	}
}

func TestCouponDiscount(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name     string
		subtotal float64
		coupon   *models.Coupon
		want     float64
	}{
		{"nil coupon", 500, nil, 0},
		{"inactive", 500, &models.Coupon{DiscountPercent: 10, IsActive: false}, 0},
		{"expired", 500, &models.Coupon{DiscountPercent: 10, IsActive: true, ExpiresAt: &past}, 0},
		{"not yet expired", 500, &models.Coupon{DiscountPercent: 10, IsActive: true, ExpiresAt: &future}, 50},
		{"no expiry", 500, &models.Coupon{DiscountPercent: 10, IsActive: true}, 50},
		{"under min subtotal", 99, &models.Coupon{DiscountFlat: 20, MinSubtotal: 100, IsActive: true}, 0},
		{"at min subtotal", 100, &models.Coupon{DiscountFlat: 20, MinSubtotal: 100, IsActive: true}, 20},
		{"percent plus flat", 200, &models.Coupon{DiscountPercent: 10, DiscountFlat: 15, IsActive: true}, 35},
		{"capped by max discount", 1000, &models.Coupon{DiscountPercent: 20, MaxDiscount: 100, IsActive: true}, 100},
		{"capped at subtotal", 30, &models.Coupon{DiscountFlat: 50, IsActive: true}, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, CouponDiscount(tc.subtotal, tc.coupon, now), 1e-9)
		})
	}
}

func TestComputeCartTotals(t *testing.T) {
	rules := DeliveryRules{FreeDeliveryThreshold: 499, DeliveryCharge: 40}
	now := time.Now()

	items := func(lines ...[2]float64) []models.CartItem {
		out := make([]models.CartItem, 0, len(lines))
		for _, l := range lines {
			out = append(out, models.CartItem{UnitPrice: l[0], Quantity: int(l[1])})
		}
		return out
	}

	t.Run("empty cart has no delivery charge", func(t *testing.T) {
		totals := ComputeCartTotals(nil, nil, rules, now)
		assert.Equal(t, CartTotals{}, totals)
	})

	t.Run("below threshold pays delivery", func(t *testing.T) {
		totals := ComputeCartTotals(items([2]float64{100, 2}), nil, rules, now)
		assert.InDelta(t, 200, totals.Subtotal, 1e-9)
		assert.InDelta(t, 40, totals.DeliveryCharge, 1e-9)
		assert.InDelta(t, 240, totals.Total, 1e-9)
	})

	t.Run("exactly at threshold is free", func(t *testing.T) {
		totals := ComputeCartTotals(items([2]float64{499, 1}), nil, rules, now)
		assert.InDelta(t, 0, totals.DeliveryCharge, 1e-9)
		assert.InDelta(t, 499, totals.Total, 1e-9)
	})

	t.Run("one paisa under threshold pays delivery", func(t *testing.T) {
		totals := ComputeCartTotals(items([2]float64{498.99, 1}), nil, rules, now)
		assert.InDelta(t, 40, totals.DeliveryCharge, 1e-9)
	})

	t.Run("coupon applies before delivery check is unaffected", func(t *testing.T) {
		// Discount comes off the subtotal but the delivery threshold is
		// judged on the undiscounted subtotal.
		coupon := &models.Coupon{DiscountFlat: 100, IsActive: true}
		totals := ComputeCartTotals(items([2]float64{500, 1}), coupon, rules, now)
		assert.InDelta(t, 500, totals.Subtotal, 1e-9)
		assert.InDelta(t, 100, totals.Discount, 1e-9)
		assert.InDelta(t, 0, totals.DeliveryCharge, 1e-9)
		assert.InDelta(t, 400, totals.Total, 1e-9)
	})

	t.Run("total identity holds", func(t *testing.T) {
		coupon := &models.Coupon{DiscountPercent: 15, IsActive: true}
		totals := ComputeCartTotals(items([2]float64{120.5, 3}, [2]float64{35, 2}), coupon, rules, now)
		assert.InDelta(t, totals.Subtotal-totals.Discount+totals.DeliveryCharge, totals.Total, 1e-9)
	})

	t.Run("recomputation is idempotent", func(t *testing.T) {
		lines := items([2]float64{49.5, 4}, [2]float64{120, 1})
		coupon := &models.Coupon{DiscountPercent: 10, IsActive: true}
		first := ComputeCartTotals(lines, coupon, rules, now)
		second := ComputeCartTotals(lines, coupon, rules, now)
		assert.Equal(t, first, second)
	})
}
