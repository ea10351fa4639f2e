package services

import (
	"time"

	"github.com/example/greenbasket/internal/models"
)

// DeliveryRules are the knobs the cart totals depend on. They come from the
// StoreSettings row, falling back to config defaults when the row is absent.
type DeliveryRules struct {
	FreeDeliveryThreshold float64
	DeliveryCharge        float64
}

// CartTotals is the derived monetary breakdown of a cart. It is never stored;
// every read recomputes it from the items.
type CartTotals struct {
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	DeliveryCharge float64 `json:"delivery_charge"`
	Total          float64 `json:"total"`
}

// SellingPrice applies the percent and flat discounts to a base price,
// floored at zero.
func SellingPrice(basePrice, discountPercent, discountFlat float64) float64 {
	price := basePrice - basePrice*discountPercent/100 - discountFlat
	if price < 0 {
		return 0
	}
	return price
}

// CouponDiscount computes the discount a coupon grants on a subtotal. It is a
// pure function of its inputs: an inactive, expired or under-threshold coupon
// grants nothing.
func CouponDiscount(subtotal float64, coupon *models.Coupon, now time.Time) float64 {
	if coupon == nil || !coupon.IsActive {
		return 0
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return 0
	}
	if subtotal < coupon.MinSubtotal {
		return 0
	}

	discount := subtotal*coupon.DiscountPercent/100 + coupon.DiscountFlat
	if coupon.MaxDiscount > 0 && discount > coupon.MaxDiscount {
		discount = coupon.MaxDiscount
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}

// ComputeCartTotals recomputes subtotal, coupon discount, delivery charge and
// total from the cart lines. Delivery is free exactly when the subtotal
// reaches the threshold.
func ComputeCartTotals(items []models.CartItem, coupon *models.Coupon, rules DeliveryRules, now time.Time) CartTotals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	totals := CartTotals{Subtotal: subtotal}
	totals.Discount = CouponDiscount(subtotal, coupon, now)

	if len(items) > 0 && subtotal < rules.FreeDeliveryThreshold {
		totals.DeliveryCharge = rules.DeliveryCharge
	}

	totals.Total = totals.Subtotal - totals.Discount + totals.DeliveryCharge
	return totals
}
