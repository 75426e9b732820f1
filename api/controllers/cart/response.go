package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/kofiasare/sewshop-backend/internal/cart"
	"github.com/kofiasare/sewshop-backend/internal/sellable"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

type cartView struct {
	ID       uuid.UUID      `json:"id"`
	Status   string         `json:"status"`
	Currency string         `json:"currency"`
	Items    []cartItemView `json:"items"`
	Summary  summaryView    `json:"summary"`
	Warnings []warningView  `json:"warnings,omitempty"`
}

type summaryView struct {
	ItemCount   int             `json:"item_count"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Total       decimal.Decimal `json:"total"`
}

type cartItemView struct {
	ID                       uuid.UUID            `json:"id"`
	Kind                     enums.SellableKind   `json:"kind"`
	VariantID                uuid.UUID            `json:"variant_id"`
	Name                     string               `json:"name"`
	VariantLabel             *string              `json:"variant_label,omitempty"`
	SKU                      *string              `json:"sku,omitempty"`
	ImageURL                 *string              `json:"image_url,omitempty"`
	Quantity                 int                  `json:"quantity"`
	UnitPrice                decimal.Decimal      `json:"unit_price"`
	Subtotal                 decimal.Decimal      `json:"subtotal"`
	AvailableStock           *int                 `json:"available_stock,omitempty"`
	PackagingTypeID          *uuid.UUID           `json:"packaging_type_id,omitempty"`
	PackagingName            *string              `json:"packaging_name,omitempty"`
	MaterialOption           *string              `json:"material_option,omitempty"`
	SelectedAddons           types.SelectedAddons `json:"selected_addons"`
	EstimatedDurationMinutes *int                 `json:"estimated_duration_minutes,omitempty"`
	Position                 int                  `json:"position"`
}

type warningView struct {
	ItemID         uuid.UUID `json:"item_id"`
	Requested      int       `json:"requested"`
	Applied        int       `json:"applied"`
	AvailableStock int       `json:"available_stock"`
	Message        string    `json:"message"`
}

func newCartView(record *models.CartRecord, warnings []cartsvc.StockWarning) cartView {
	view := cartView{
		ID:       record.ID,
		Status:   string(record.Status),
		Currency: string(record.Currency),
		Items:    make([]cartItemView, 0, len(record.Items)),
		Summary: summaryView{
			Subtotal:    record.Subtotal,
			Tax:         record.Tax,
			ShippingFee: record.ShippingFee,
			Total:       record.Total,
		},
	}

	for _, item := range record.Items {
		view.Summary.ItemCount += item.Quantity
		view.Items = append(view.Items, newCartItemView(item))
	}

	for _, warning := range warnings {
		view.Warnings = append(view.Warnings, warningView{
			ItemID:         warning.ItemID,
			Requested:      warning.Requested,
			Applied:        warning.Applied,
			AvailableStock: warning.AvailableStock,
			Message:        "quantity adjusted to available stock",
		})
	}
	return view
}

func newCartItemView(item models.CartItem) cartItemView {
	ref := sellable.Resolve(item)

	view := cartItemView{
		ID:                       item.ID,
		Kind:                     ref.Kind,
		VariantID:                ref.VariantID,
		Name:                     ref.Name,
		VariantLabel:             ref.VariantLabel,
		SKU:                      ref.SKU,
		ImageURL:                 ref.ImageURL,
		Quantity:                 item.Quantity,
		UnitPrice:                item.UnitPrice,
		Subtotal:                 item.Subtotal,
		AvailableStock:           ref.AvailableStock,
		PackagingTypeID:          item.PackagingTypeID,
		PackagingName:            item.PackagingName,
		SelectedAddons:           item.SelectedAddons,
		EstimatedDurationMinutes: ref.EstimatedDurationMinutes,
		Position:                 item.Position,
	}
	if item.MaterialOption != nil {
		option := string(*item.MaterialOption)
		view.MaterialOption = &option
	}
	if view.SelectedAddons == nil {
		view.SelectedAddons = types.SelectedAddons{}
	}
	return view
}
