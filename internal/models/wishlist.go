package models

import "github.com/google/uuid"

// WishlistItem marks a product a user wants to come back to. No quantity or
// price semantics; the unique index keeps one row per (user, product).
type WishlistItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
}

// Review is a rating and comment left by a user on a product, one per pair.
type Review struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_review_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_review_user_product" json:"product_id"`
	User      *User     `json:"user,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
}
