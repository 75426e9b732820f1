package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/internal/repo"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
)

// OrderRepository exposes persistence for the order projection. Orders are
// immutable once settled; ReplaceSnapshot exists only for unpaid drafts.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error)
	ReplaceSnapshot(ctx context.Context, order *models.Order) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) error
}

// Repository is the GORM-backed OrderRepository.
type Repository struct {
	repo.Base
}

// NewRepository constructs an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &Repository{Base: repo.NewBase(tx)}
}

// Create inserts the order with its item snapshots.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = enums.PaymentStatusPending
	}
	if err := r.DB(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByOrderNumber loads an order with its items for the confirmation page.
func (r *Repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByPaymentReference loads the order carrying a provider reference.
func (r *Repository) FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Where("payment_reference = ?", reference).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ReplaceSnapshot rewrites an unpaid draft's line items and amounts in
// place. The guard refuses to touch a settled order; the caller decides
// whether a no-op counts as success.
func (r *Repository) ReplaceSnapshot(ctx context.Context, order *models.Order) (*models.Order, error) {
	result := r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status <> ?", order.ID, enums.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"subtotal":         order.Subtotal,
			"tax_amount":       order.TaxAmount,
			"shipping_cost":    order.ShippingCost,
			"total_amount":     order.TotalAmount,
			"shipping_address": order.ShippingAddress,
			"billing_address":  order.BillingAddress,
			"customer_notes":   order.CustomerNotes,
			"save_addresses":   order.SaveAddresses,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	if err := r.DB(ctx).Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
		return nil, err
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	if len(order.Items) > 0 {
		if err := r.DB(ctx).Create(&order.Items).Error; err != nil {
			return nil, err
		}
	}
	return order, nil
}

// MarkPaid settles the order. The guard keeps settlement idempotent: a
// second callback or webhook for the same reference changes nothing.
func (r *Repository) MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) error {
	return r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, enums.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"payment_status": enums.PaymentStatusPaid,
			"status":         enums.OrderStatusProcessing,
			"paid_at":        paidAt,
		}).Error
}
