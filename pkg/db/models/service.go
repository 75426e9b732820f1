package models

import (
	"time"

	"github.com/google/uuid"
)

// Service groups the bookable variants (tailoring jobs, alterations) offered
// alongside physical products.
type Service struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string           `gorm:"column:name;not null"`
	Slug               string           `gorm:"column:slug;not null;uniqueIndex"`
	Description        *string          `gorm:"column:description"`
	FeaturedImage      *string          `gorm:"column:featured_image"`
	HasMaterialOptions bool             `gorm:"column:has_material_options;not null;default:false"`
	IsActive           bool             `gorm:"column:is_active;not null;default:true"`
	Variants           []ServiceVariant `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	Addons             []ServiceAddon   `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
