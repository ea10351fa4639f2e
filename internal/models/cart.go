package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds one user's pending items. There is exactly one cart per user.
// Totals are never read from storage; they are recomputed from the items on
// every access because the delivery charge depends on the current subtotal.
type Cart struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	CouponCode string     `json:"coupon_code"`
	Items      []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// CartItem maps a product variant to a requested quantity. UnitPrice is the
// selling price snapshot taken when the line was last touched.
type CartItem struct {
	BaseModel
	CartID    uuid.UUID       `gorm:"type:uuid;index" json:"cart_id"`
	ProductID uuid.UUID       `gorm:"type:uuid" json:"product_id"`
	VariantID uuid.UUID       `gorm:"type:uuid;index" json:"variant_id"`
	Product   *Product        `json:"product,omitempty"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice float64         `json:"unit_price"`
}

// Coupon defines a discount rule applied to a cart subtotal.
type Coupon struct {
	BaseModel
	Code            string     `gorm:"uniqueIndex" json:"code"`
	DiscountPercent float64    `json:"discount_percent"`
	DiscountFlat    float64    `json:"discount_flat"`
	MaxDiscount     float64    `json:"max_discount"`
	MinSubtotal     float64    `json:"min_subtotal"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at"`
}
