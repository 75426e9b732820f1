package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceVariant is the sellable unit for services, carrying the material
// price tiers the subtotal computation selects from.
type ServiceVariant struct {
	ID                       uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ServiceID                uuid.UUID        `gorm:"column:service_id;type:uuid;not null"`
	Label                    string           `gorm:"column:label;not null"`
	BasePrice                decimal.Decimal  `gorm:"column:base_price;type:numeric(12,2);not null"`
	CustomerMaterialsPrice   *decimal.Decimal `gorm:"column:customer_materials_price;type:numeric(12,2)"`
	ShopMaterialsPrice       *decimal.Decimal `gorm:"column:shop_materials_price;type:numeric(12,2)"`
	EstimatedDurationMinutes *int             `gorm:"column:estimated_duration_minutes"`
	ImageURL                 *string          `gorm:"column:image_url"`
	IsActive                 bool             `gorm:"column:is_active;not null;default:true"`
	Service                  *Service         `gorm:"foreignKey:ServiceID"`
	CreatedAt                time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
