package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

// Service exposes the order confirmation read model.
type Service interface {
	Confirmation(ctx context.Context, orderNumber string) (*ConfirmationDTO, error)
}

type service struct {
	repo OrderRepository
}

// NewService builds the order read service.
func NewService(repo OrderRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

// ConfirmationDTO is everything the confirmation page shows. Item identity is
// the snapshot taken at placement, never the live catalog.
type ConfirmationDTO struct {
	OrderNumber      string              `json:"order_number"`
	Status           enums.OrderStatus   `json:"status"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	PaymentStatus    enums.PaymentStatus `json:"payment_status"`
	PaymentReference string              `json:"payment_reference"`
	Currency         enums.Currency      `json:"currency"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	TaxAmount        decimal.Decimal     `json:"tax_amount"`
	ShippingCost     decimal.Decimal     `json:"shipping_cost"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	ShippingAddress  types.Address       `json:"shipping_address"`
	BillingAddress   *types.Address      `json:"billing_address,omitempty"`
	CustomerNotes    *string             `json:"customer_notes,omitempty"`
	Items            []ConfirmationItem  `json:"items"`
	PlacedAt         time.Time           `json:"placed_at"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
}

// ConfirmationItem is one snapshotted line on the confirmation page.
type ConfirmationItem struct {
	ID             uuid.UUID             `json:"id"`
	SellableKind   enums.SellableKind    `json:"sellable_kind"`
	Name           string                `json:"name"`
	VariantLabel   *string               `json:"variant_label,omitempty"`
	SKU            *string               `json:"sku,omitempty"`
	ImageURL       *string               `json:"image_url,omitempty"`
	Quantity       int                   `json:"quantity"`
	UnitPrice      decimal.Decimal       `json:"unit_price"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	PackagingName  *string               `json:"packaging_name,omitempty"`
	MaterialOption *enums.MaterialOption `json:"material_option,omitempty"`
	SelectedAddons types.SelectedAddons  `json:"selected_addons"`
}

// Confirmation loads an order by number and decodes its persisted addresses.
func (s *service) Confirmation(ctx context.Context, orderNumber string) (*ConfirmationDTO, error) {
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required").
			WithDetails(map[string]string{"order_number": "is required"})
	}

	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order")
	}

	return BuildConfirmation(order)
}

// BuildConfirmation maps a loaded order row onto the read model.
func BuildConfirmation(order *models.Order) (*ConfirmationDTO, error) {
	shipping, err := types.DecodeAddress(order.ShippingAddress)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to decode shipping address")
	}

	dto := &ConfirmationDTO{
		OrderNumber:      order.OrderNumber,
		Status:           order.Status,
		PaymentMethod:    order.PaymentMethod,
		PaymentStatus:    order.PaymentStatus,
		PaymentReference: order.PaymentReference,
		Currency:         order.Currency,
		Subtotal:         order.Subtotal,
		TaxAmount:        order.TaxAmount,
		ShippingCost:     order.ShippingCost,
		TotalAmount:      order.TotalAmount,
		ShippingAddress:  shipping,
		CustomerNotes:    order.CustomerNotes,
		PlacedAt:         order.CreatedAt,
		PaidAt:           order.PaidAt,
	}

	if order.BillingAddress != nil {
		billing, err := types.DecodeAddress(*order.BillingAddress)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to decode billing address")
		}
		if !billing.IsZero() {
			dto.BillingAddress = &billing
		}
	}

	dto.Items = make([]ConfirmationItem, 0, len(order.Items))
	for _, item := range order.Items {
		addons := item.SelectedAddons
		if addons == nil {
			addons = types.SelectedAddons{}
		}
		dto.Items = append(dto.Items, ConfirmationItem{
			ID:             item.ID,
			SellableKind:   item.SellableKind,
			Name:           item.Name,
			VariantLabel:   item.VariantLabel,
			SKU:            item.SKU,
			ImageURL:       item.ImageURL,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Subtotal:       item.Subtotal,
			PackagingName:  item.PackagingName,
			MaterialOption: item.MaterialOption,
			SelectedAddons: addons,
		})
	}
	return dto, nil
}
