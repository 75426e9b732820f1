package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/pkg/db/models"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// catalogLoader resolves sellables and their attachments at mutation time.
// Implemented by the catalog repository.
type catalogLoader interface {
	ProductVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	ServiceVariant(ctx context.Context, id uuid.UUID) (*models.ServiceVariant, error)
	ServiceAddons(ctx context.Context, serviceID uuid.UUID) ([]models.ServiceAddon, error)
	PackagingType(ctx context.Context, id uuid.UUID) (*models.PackagingType, error)
}

// CartRepository exposes persistence operations for cart records and lines.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error)
	Update(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error)
	FindActiveByToken(ctx context.Context, clientToken string) (*models.CartRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartRecord, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	NextPosition(ctx context.Context, cartID uuid.UUID) (int, error)
	SetCheckoutReference(ctx context.Context, cartID uuid.UUID, reference string) error
	MarkConverted(ctx context.Context, cartID uuid.UUID, at time.Time) error
}
