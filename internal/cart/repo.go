package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/internal/repo"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
)

// Repository persists cart records and their lines.
type Repository struct {
	repo.Base
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{Base: repo.NewBase(tx)}
}

func itemPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Items.ProductVariant").
		Preload("Items.ProductVariant.Product").
		Preload("Items.ServiceVariant").
		Preload("Items.ServiceVariant.Service")
}

// Create inserts a new CartRecord.
func (r *Repository) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	if record.Status == "" {
		record.Status = enums.CartStatusActive
	}
	if err := r.DB(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Update saves the cart record without touching its item associations.
func (r *Repository) Update(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	if err := r.DB(ctx).Omit("Items").Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindActiveByToken loads the active CartRecord for a client token with its
// lines in display order.
func (r *Repository) FindActiveByToken(ctx context.Context, clientToken string) (*models.CartRecord, error) {
	var record models.CartRecord
	err := itemPreloads(r.DB(ctx)).
		Where("client_token = ? AND status = ?", clientToken, enums.CartStatusActive).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByID loads a CartRecord by primary key with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := itemPreloads(r.DB(ctx)).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListItems returns the cart's lines in display order with sellables loaded.
func (r *Repository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB(ctx).
		Preload("ProductVariant").
		Preload("ProductVariant.Product").
		Preload("ServiceVariant").
		Preload("ServiceVariant.Service").
		Where("cart_id = ?", cartID).
		Order("position ASC, created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindItem loads one line scoped to its cart.
func (r *Repository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB(ctx).
		Preload("ProductVariant").
		Preload("ProductVariant.Product").
		Preload("ServiceVariant").
		Preload("ServiceVariant.Service").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a new cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem saves the provided line.
func (r *Repository) UpdateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.DB(ctx).Omit("ProductVariant", "ServiceVariant").Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes one line scoped to its cart.
func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	result := r.DB(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NextPosition returns the display position for a line appended to the cart.
func (r *Repository) NextPosition(ctx context.Context, cartID uuid.UUID) (int, error) {
	var max *int
	err := r.DB(ctx).
		Model(&models.CartItem{}).
		Select("MAX(position)").
		Where("cart_id = ?", cartID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// SetCheckoutReference stores the payment reference the first time checkout
// begins for this cart. It never overwrites an existing reference.
func (r *Repository) SetCheckoutReference(ctx context.Context, cartID uuid.UUID, reference string) error {
	return r.DB(ctx).
		Model(&models.CartRecord{}).
		Where("id = ? AND checkout_reference IS NULL", cartID).
		Update("checkout_reference", reference).Error
}

// MarkConverted flips the cart to converted once its order is confirmed.
func (r *Repository) MarkConverted(ctx context.Context, cartID uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cartID).
		Updates(map[string]interface{}{
			"status":       enums.CartStatusConverted,
			"converted_at": at,
		}).Error
}
