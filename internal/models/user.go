package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
)

// User represents an account identified by a verified phone number.
// Users are created on first successful OTP verification and never hard-deleted.
type User struct {
	BaseModel
	Phone            string         `gorm:"uniqueIndex" json:"phone"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Role             string         `gorm:"default:customer" json:"role"`
	ProfileCompleted bool           `json:"profile_completed"`
	Addresses        []Address      `json:"addresses,omitempty"`
	RefreshTokens    []RefreshToken `json:"-"`
}

// Address is a delivery address owned by a user. At most one is default.
type Address struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Label       string    `json:"label"`
	AddressLine string    `json:"address_line"`
	Landmark    string    `json:"landmark"`
	City        string    `json:"city"`
	Pincode     string    `json:"pincode"`
	IsDefault   bool      `json:"is_default"`
}

// RefreshToken is one device's long-lived session credential. Only a bcrypt
// hash of the token is stored so a leaked row cannot be replayed.
type RefreshToken struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	TokenHash string    `json:"-"`
	Device    string    `json:"device"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// OTPVerification tracks a login code sent to a phone number.
type OTPVerification struct {
	BaseModel
	Phone     string    `gorm:"index" json:"phone"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `gorm:"default:0" json:"attempts"`
	Consumed  bool      `json:"consumed"`
}
