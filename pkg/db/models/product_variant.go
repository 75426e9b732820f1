package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is the sellable unit for physical goods.
type ProductVariant struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	SKU            string          `gorm:"column:sku;not null;uniqueIndex"`
	Label          *string         `gorm:"column:label"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	TrackInventory bool            `gorm:"column:track_inventory;not null;default:true"`
	AvailableStock int             `gorm:"column:available_stock;not null;default:0"`
	ImageURL       *string         `gorm:"column:image_url"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	Product        *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
