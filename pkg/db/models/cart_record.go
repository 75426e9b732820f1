package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/pkg/enums"
)

// CartRecord is the authoritative cart snapshot for one storefront client.
// Totals are recomputed by a full fold over Items after every mutation.
type CartRecord struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientToken string           `gorm:"column:client_token;not null;uniqueIndex"`
	Status      enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	Currency    enums.Currency   `gorm:"column:currency;not null;default:'NGN'"`
	Subtotal    decimal.Decimal  `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	Tax         decimal.Decimal  `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	ShippingFee decimal.Decimal  `gorm:"column:shipping_fee;type:numeric(12,2);not null;default:0"`
	Total       decimal.Decimal  `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	// CheckoutReference is generated once when checkout first begins for this
	// cart and reused across retries so the provider reference never drifts
	// from the order record.
	CheckoutReference *string    `gorm:"column:checkout_reference;uniqueIndex"`
	ConvertedAt       *time.Time `gorm:"column:converted_at"`
	Items             []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
