package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/pagination"
)

// CatalogRepository is the read surface the browsing service needs.
type CatalogRepository interface {
	ListProducts(ctx context.Context, params pagination.Params) ([]models.Product, error)
	ListServices(ctx context.Context, params pagination.Params) ([]models.Service, error)
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindServiceBySlug(ctx context.Context, slug string) (*models.Service, error)
	ProductVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	ServiceVariant(ctx context.Context, id uuid.UUID) (*models.ServiceVariant, error)
	ServiceAddons(ctx context.Context, serviceID uuid.UUID) ([]models.ServiceAddon, error)
	PackagingType(ctx context.Context, id uuid.UUID) (*models.PackagingType, error)
}

// Service exposes storefront catalog browsing.
type Service interface {
	Products(ctx context.Context, params pagination.Params) (*ProductPage, error)
	Services(ctx context.Context, params pagination.Params) (*ServicePage, error)
	ProductDetail(ctx context.Context, slug string) (*models.Product, error)
	ServiceDetail(ctx context.Context, slug string) (*models.Service, error)
}

// ProductPage is one cursor page of the product listing.
type ProductPage struct {
	Products   []models.Product
	NextCursor *string
}

// ServicePage is one cursor page of the service listing.
type ServicePage struct {
	Services   []models.Service
	NextCursor *string
}

type service struct {
	repo CatalogRepository
}

// NewService builds the catalog browsing service.
func NewService(repo CatalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Products(ctx context.Context, params pagination.Params) (*ProductPage, error) {
	rows, err := s.repo.ListProducts(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list products")
	}

	page := &ProductPage{}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &cursor
	}
	page.Products = rows
	return page, nil
}

func (s *service) Services(ctx context.Context, params pagination.Params) (*ServicePage, error) {
	rows, err := s.repo.ListServices(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list services")
	}

	page := &ServicePage{}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &cursor
	}
	page.Services = rows
	return page, nil
}

func (s *service) ProductDetail(ctx context.Context, slug string) (*models.Product, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
	}
	return product, nil
}

func (s *service) ServiceDetail(ctx context.Context, slug string) (*models.Service, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service slug is required")
	}
	svc, err := s.repo.FindServiceBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load service")
	}
	return svc, nil
}
