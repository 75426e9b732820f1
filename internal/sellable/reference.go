package sellable

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
)

// Placeholder display names for rows whose sellable could not be loaded.
// A cart row must always render, so resolution never fails.
const (
	FallbackProductName = "Product"
	FallbackServiceName = "Service"
	FallbackItemName    = "Item"
)

// Reference is the normalized display identity of whatever a cart line sells.
// It is resolved once when the line is loaded and never re-inferred.
type Reference struct {
	Kind                     enums.SellableKind
	VariantID                uuid.UUID
	Name                     string
	VariantLabel             *string
	SKU                      *string
	ImageURL                 *string
	AvailableStock           *int
	BasePrice                decimal.Decimal
	EstimatedDurationMinutes *int
}

// IsProduct reports whether the reference points at a product variant.
func (r Reference) IsProduct() bool {
	return r.Kind == enums.SellableKindProduct
}

// IsService reports whether the reference points at a service variant.
func (r Reference) IsService() bool {
	return r.Kind == enums.SellableKindService
}

// Resolve maps a persisted cart line onto a Reference. The discriminant is the
// sellable_type tag, with the product-variant foreign key accepted as a legacy
// signal; anything unrecognized resolves to the generic item placeholder.
func Resolve(item models.CartItem) Reference {
	switch {
	case item.SellableType == models.SellableTypeProductVariant || item.ProductVariantID != nil:
		return resolveProduct(item)
	case item.SellableType == models.SellableTypeServiceVariant:
		return resolveService(item)
	default:
		return Reference{
			Kind:      enums.SellableKindItem,
			VariantID: item.SellableID,
			Name:      FallbackItemName,
		}
	}
}

func resolveProduct(item models.CartItem) Reference {
	ref := Reference{
		Kind:      enums.SellableKindProduct,
		VariantID: item.SellableID,
		Name:      FallbackProductName,
	}
	if item.ProductVariantID != nil {
		ref.VariantID = *item.ProductVariantID
	}

	variant := item.ProductVariant
	if variant == nil {
		return ref
	}

	ref.SKU = strPtr(variant.SKU)
	ref.VariantLabel = copyStrPtr(variant.Label)
	ref.ImageURL = copyStrPtr(variant.ImageURL)
	ref.BasePrice = variant.Price
	if variant.TrackInventory {
		stock := variant.AvailableStock
		ref.AvailableStock = &stock
	}
	if variant.Product != nil && variant.Product.Name != "" {
		ref.Name = variant.Product.Name
		if ref.ImageURL == nil {
			ref.ImageURL = copyStrPtr(variant.Product.FeaturedImage)
		}
	}
	return ref
}

func resolveService(item models.CartItem) Reference {
	ref := Reference{
		Kind:      enums.SellableKindService,
		VariantID: item.SellableID,
		Name:      FallbackServiceName,
	}
	if item.ServiceVariantID != nil {
		ref.VariantID = *item.ServiceVariantID
	}

	variant := item.ServiceVariant
	if variant == nil {
		return ref
	}

	ref.VariantLabel = strPtr(variant.Label)
	ref.ImageURL = copyStrPtr(variant.ImageURL)
	ref.BasePrice = variant.BasePrice
	ref.EstimatedDurationMinutes = copyIntPtr(variant.EstimatedDurationMinutes)
	if variant.Service != nil && variant.Service.Name != "" {
		ref.Name = variant.Service.Name
		if ref.ImageURL == nil {
			ref.ImageURL = copyStrPtr(variant.Service.FeaturedImage)
		}
	}
	return ref
}

func strPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func copyStrPtr(src *string) *string {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}

func copyIntPtr(src *int) *int {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}
