package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/internal/repo"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/pagination"
)

// Repository reads the catalog: storefront listings plus the authoritative
// prices, stock, and add-on caps cart mutations resolve against.
type Repository struct {
	repo.Base
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListProducts returns a page of active products with their variants, newest
// first, using the shared cursor scheme.
func (r *Repository) ListProducts(ctx context.Context, params pagination.Params) ([]models.Product, error) {
	query := r.DB(ctx).
		Preload("Variants", "is_active = ?", true).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListServices returns a page of active services with variants and add-ons.
func (r *Repository) ListServices(ctx context.Context, params pagination.Params) ([]models.Service, error) {
	query := r.DB(ctx).
		Preload("Variants", "is_active = ?", true).
		Preload("Addons", "is_active = ?", true).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var services []models.Service
	if err := query.Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// FindProductBySlug loads one product with variants and packaging choices.
func (r *Repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).
		Preload("Variants", "is_active = ?", true).
		Preload("PackagingTypes").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindServiceBySlug loads one service with variants and add-ons.
func (r *Repository) FindServiceBySlug(ctx context.Context, slug string) (*models.Service, error) {
	var service models.Service
	err := r.DB(ctx).
		Preload("Variants", "is_active = ?", true).
		Preload("Addons", "is_active = ?", true).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// ProductVariant loads one variant with its parent product.
func (r *Repository) ProductVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.DB(ctx).
		Preload("Product").
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// ServiceVariant loads one variant with its parent service.
func (r *Repository) ServiceVariant(ctx context.Context, id uuid.UUID) (*models.ServiceVariant, error) {
	var variant models.ServiceVariant
	err := r.DB(ctx).
		Preload("Service").
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// ServiceAddons lists a service's add-ons in catalog order.
func (r *Repository) ServiceAddons(ctx context.Context, serviceID uuid.UUID) ([]models.ServiceAddon, error) {
	var addons []models.ServiceAddon
	err := r.DB(ctx).
		Where("service_id = ?", serviceID).
		Order("created_at ASC, id ASC").
		Find(&addons).Error
	if err != nil {
		return nil, err
	}
	return addons, nil
}

// PackagingType loads one packaging choice.
func (r *Repository) PackagingType(ctx context.Context, id uuid.UUID) (*models.PackagingType, error) {
	var packaging models.PackagingType
	err := r.DB(ctx).
		Where("id = ?", id).
		First(&packaging).Error
	if err != nil {
		return nil, err
	}
	return &packaging, nil
}
