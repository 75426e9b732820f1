package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/pagination"
)

type stubRepo struct {
	products []models.Product
	services []models.Service
	product  *models.Product
	service  *models.Service
}

func (r *stubRepo) ListProducts(ctx context.Context, params pagination.Params) ([]models.Product, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	if len(r.products) > limit {
		return r.products[:limit], nil
	}
	return r.products, nil
}

func (r *stubRepo) ListServices(ctx context.Context, params pagination.Params) ([]models.Service, error) {
	return r.services, nil
}

func (r *stubRepo) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if r.product == nil || r.product.Slug != slug {
		return nil, gorm.ErrRecordNotFound
	}
	return r.product, nil
}

func (r *stubRepo) FindServiceBySlug(ctx context.Context, slug string) (*models.Service, error) {
	if r.service == nil || r.service.Slug != slug {
		return nil, gorm.ErrRecordNotFound
	}
	return r.service, nil
}

func (r *stubRepo) ProductVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) ServiceVariant(ctx context.Context, id uuid.UUID) (*models.ServiceVariant, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) ServiceAddons(ctx context.Context, serviceID uuid.UUID) ([]models.ServiceAddon, error) {
	return nil, nil
}

func (r *stubRepo) PackagingType(ctx context.Context, id uuid.UUID) (*models.PackagingType, error) {
	return nil, gorm.ErrRecordNotFound
}

func manyProducts(n int) []models.Product {
	out := make([]models.Product, 0, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		out = append(out, models.Product{
			ID:        uuid.New(),
			Name:      "Product",
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestProductsPaginatesWithCursor(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{products: manyProducts(10)})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	page, err := svc.Products(context.Background(), pagination.Params{Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Products) != 5 {
		t.Fatalf("expected 5 products, got %d", len(page.Products))
	}
	if page.NextCursor == nil {
		t.Fatal("expected a next cursor")
	}

	cursor, err := pagination.ParseCursor(*page.NextCursor)
	if err != nil {
		t.Fatalf("next cursor does not parse: %v", err)
	}
	last := page.Products[len(page.Products)-1]
	if cursor.ID != last.ID {
		t.Fatal("cursor must point at the last returned row")
	}
}

func TestProductsLastPageHasNoCursor(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{products: manyProducts(3)})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	page, err := svc.Products(context.Background(), pagination.Params{Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Products) != 3 || page.NextCursor != nil {
		t.Fatalf("expected final page without cursor, got %d rows", len(page.Products))
	}
}

func TestProductDetailNotFound(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	_, err = svc.ProductDetail(context.Background(), "missing")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceDetailFound(t *testing.T) {
	t.Parallel()

	want := &models.Service{ID: uuid.New(), Name: "Bespoke sewing", Slug: "bespoke-sewing"}
	svc, err := NewService(&stubRepo{service: want})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	got, err := svc.ServiceDetail(context.Background(), "bespoke-sewing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != want.ID {
		t.Fatal("expected matching service")
	}
}
