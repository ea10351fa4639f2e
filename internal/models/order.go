package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. PaymentPending is the provisional state an online-payment
// order sits in until its payment is verified.
const (
	StatusPaymentPending  = "PAYMENT_PENDING"
	StatusPlaced          = "PLACED"
	StatusConfirmed       = "CONFIRMED"
	StatusPacked          = "PACKED"
	StatusReadyToDeliver  = "READY_TO_DELIVER"
	StatusHandedToAgent   = "HANDED_TO_AGENT"
	StatusDelivered       = "DELIVERED"
	StatusCancelled       = "CANCELLED"
	StatusRefundInitiated = "REFUND_INITIATED"
	StatusRefunded        = "REFUNDED"
)

// Payment statuses.
const (
	PaymentPending         = "PENDING"
	PaymentPaid            = "PAID"
	PaymentRefundInitiated = "REFUND_INITIATED"
	PaymentRefunded        = "REFUNDED"
)

// Payment methods.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// Order is an immutable snapshot of a checkout. Item names and prices are
// copied from the cart so later catalog edits cannot alter a placed order.
// Orders are never deleted; cancellation is a status.
type Order struct {
	BaseModel
	OrderNumber    string     `gorm:"uniqueIndex" json:"order_number"`
	UserID         uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	User           *User      `json:"user,omitempty"`
	Status         string     `gorm:"index" json:"status"`
	PaymentMethod  string     `json:"payment_method"`
	PaymentStatus  string     `json:"payment_status"`
	GatewayOrderID string     `gorm:"index" json:"gateway_order_id"`
	PaymentID      string     `json:"payment_id"`
	RefundID       string     `json:"refund_id"`
	Subtotal       float64    `json:"subtotal"`
	Discount       float64    `json:"discount"`
	DeliveryCharge float64    `json:"delivery_charge"`
	Total          float64    `json:"total"`
	CouponCode     string     `json:"coupon_code"`
	PlacedAt       time.Time  `json:"placed_at"`

	// Delivery address snapshot.
	AddressLine string `json:"address_line"`
	Landmark    string `json:"landmark"`
	City        string `json:"city"`
	Pincode     string `json:"pincode"`

	Items   []OrderItem          `json:"items,omitempty"`
	History []OrderStatusHistory `json:"history,omitempty"`
}

// OrderItem is a purchased line frozen at checkout time.
type OrderItem struct {
	BaseModel
	OrderID       uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID     *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	VariantID     *uuid.UUID `gorm:"type:uuid" json:"variant_id"`
	ProductName   string     `json:"product_name"`
	QuantityLabel string     `json:"quantity_label"`
	Unit          string     `json:"unit"`
	Quantity      int        `json:"quantity"`
	UnitPrice     float64    `json:"unit_price"`
	LineTotal     float64    `json:"line_total"`
}

// OrderStatusHistory is an append-only trail of status changes. Rows are
// written once and never updated.
type OrderStatusHistory struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	Status    string    `json:"status"`
	ActorRole string    `json:"actor_role"`
	Note      string    `json:"note"`
}
