package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product groups the purchasable variants shown on the storefront.
type Product struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string           `gorm:"column:name;not null"`
	Slug           string           `gorm:"column:slug;not null;uniqueIndex"`
	Description    *string          `gorm:"column:description"`
	FeaturedImage  *string          `gorm:"column:featured_image"`
	GalleryImages  pq.StringArray   `gorm:"column:gallery_images;type:text[]"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true"`
	Variants       []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	PackagingTypes []PackagingType  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
