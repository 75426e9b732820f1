package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/pkg/enums"
)

// Order is the immutable projection written when a cart is placed. The client
// only ever reads it.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber      string              `gorm:"column:order_number;not null;uniqueIndex"`
	CartID           *uuid.UUID          `gorm:"column:cart_id;type:uuid"`
	Status           enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentReference string              `gorm:"column:payment_reference;not null;uniqueIndex"`
	Currency         enums.Currency      `gorm:"column:currency;not null;default:'NGN'"`
	Subtotal         decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount        decimal.Decimal     `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	ShippingCost     decimal.Decimal     `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	TotalAmount      decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	// Addresses are stored as JSON-encoded strings; the confirmation read
	// model decodes ShippingAddress before returning it.
	ShippingAddress string      `gorm:"column:shipping_address;not null"`
	BillingAddress  *string     `gorm:"column:billing_address"`
	CustomerNotes   *string     `gorm:"column:customer_notes"`
	// SaveAddresses records the customer's opt-in to reuse these addresses
	// later. Stored with the order even though address books are not built
	// yet, so the submitted form round-trips.
	SaveAddresses bool `gorm:"column:save_addresses;not null;default:false"`
	PaidAt          *time.Time  `gorm:"column:paid_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
