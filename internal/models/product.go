package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Category groups products. The hierarchy is flat.
type Category struct {
	BaseModel
	Name     string    `json:"name"`
	Slug     string    `gorm:"uniqueIndex" json:"slug"`
	Image    string    `json:"image"`
	Products []Product `json:"products,omitempty"`
}

// Product is a catalog entry with one or more quantity/price variants.
// Ready-to-eat products are additionally gated by a freshness window that is
// evaluated lazily at read time from ActivatedAt and ExpiryHours.
type Product struct {
	BaseModel
	Name          string           `json:"name"`
	Slug          string           `gorm:"uniqueIndex" json:"slug"`
	Description   string           `json:"description"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category      *Category        `json:"category,omitempty"`
	Images        pq.StringArray   `gorm:"type:text[]" json:"images"`
	IsActive      bool             `gorm:"default:true" json:"is_active"`
	IsReadyToEat  bool             `json:"is_ready_to_eat"`
	ActivatedAt   *time.Time       `json:"activated_at"`
	ExpiryHours   int              `json:"expiry_hours"`
	RatingAverage float64          `json:"rating_average"`
	RatingCount   int              `json:"rating_count"`
	Variants      []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant is one purchasable quantity option of a product.
// SellingPrice is derived from the base price and discounts; it is stored for
// listing queries but always recomputed on write.
type ProductVariant struct {
	BaseModel
	ProductID       uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	QuantityLabel   string    `json:"quantity_label"`
	Unit            string    `json:"unit"`
	BasePrice       float64   `json:"base_price"`
	DiscountPercent float64   `json:"discount_percent"`
	DiscountFlat    float64   `json:"discount_flat"`
	SellingPrice    float64   `json:"selling_price"`
	Stock           int       `json:"stock"`
}
