package services

import (
	"time"

	"github.com/example/greenbasket/internal/models"
)

// FreshnessOpen reports whether a ready-to-eat product is still inside its
// freshness window at the given instant. The window is evaluated lazily at
// read time; there is no background sweep.
func FreshnessOpen(now time.Time, activatedAt *time.Time, expiryHours int) bool {
	if activatedAt == nil || expiryHours <= 0 {
		return false
	}
	return now.Before(activatedAt.Add(time.Duration(expiryHours) * time.Hour))
}

// VariantAvailable reports whether a variant can be purchased right now:
// stock on hand, product active, and the freshness window open for
// ready-to-eat products.
func VariantAvailable(product *models.Product, variant *models.ProductVariant, now time.Time) bool {
	if product == nil || variant == nil {
		return false
	}
	if variant.Stock <= 0 || !product.IsActive {
		return false
	}
	if product.IsReadyToEat {
		return FreshnessOpen(now, product.ActivatedAt, product.ExpiryHours)
	}
	return true
}
