package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/pkg/enums"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

// OrderItem snapshots one cart line at placement time. Display identity is
// denormalized so confirmation pages survive later catalog edits.
type OrderItem struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	SellableKind   enums.SellableKind    `gorm:"column:sellable_kind;not null"`
	SellableID     *uuid.UUID            `gorm:"column:sellable_id;type:uuid"`
	Name           string                `gorm:"column:name;not null"`
	VariantLabel   *string               `gorm:"column:variant_label"`
	SKU            *string               `gorm:"column:sku"`
	ImageURL       *string               `gorm:"column:image_url"`
	Quantity       int                   `gorm:"column:quantity;not null"`
	UnitPrice      decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Subtotal       decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	PackagingName  *string               `gorm:"column:packaging_name"`
	MaterialOption *enums.MaterialOption `gorm:"column:material_option"`
	SelectedAddons types.SelectedAddons  `gorm:"column:selected_addons;type:jsonb;serializer:json"`
	Position       int                   `gorm:"column:position;not null;default:0"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
