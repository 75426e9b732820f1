package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/pkg/enums"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

// Sellable type tags persisted in the sellable_type discriminant column.
const (
	SellableTypeProductVariant = "sewshop.product_variant"
	SellableTypeServiceVariant = "sewshop.service_variant"
)

// CartItem is one polymorphic cart line. The sellable is discriminated by
// SellableType (or, for rows written before the tag existed, by the presence
// of ProductVariantID); the tag is resolved to a SellableKind once at load
// time and never re-inferred.
type CartItem struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID           uuid.UUID             `gorm:"column:cart_id;type:uuid;not null;index"`
	SellableType     string                `gorm:"column:sellable_type;not null"`
	SellableID       uuid.UUID             `gorm:"column:sellable_id;type:uuid;not null"`
	ProductVariantID *uuid.UUID            `gorm:"column:product_variant_id;type:uuid"`
	ServiceVariantID *uuid.UUID            `gorm:"column:service_variant_id;type:uuid"`
	Quantity         int                   `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Subtotal         decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	PackagingTypeID  *uuid.UUID            `gorm:"column:packaging_type_id;type:uuid"`
	PackagingName    *string               `gorm:"column:packaging_name"`
	MaterialOption   *enums.MaterialOption `gorm:"column:material_option"`
	SelectedAddons   types.SelectedAddons  `gorm:"column:selected_addons;type:jsonb;serializer:json"`
	Position         int                   `gorm:"column:position;not null;default:0"`
	ProductVariant   *ProductVariant       `gorm:"foreignKey:ProductVariantID"`
	ServiceVariant   *ServiceVariant       `gorm:"foreignKey:ServiceVariantID"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
