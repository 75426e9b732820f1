package cart

import (
	"github.com/google/uuid"

	cartsvc "github.com/kofiasare/sewshop-backend/internal/cart"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
)

type addProductItemRequest struct {
	ProductVariantID string  `json:"product_variant_id" validate:"required,uuid"`
	Quantity         int     `json:"quantity" validate:"min=0"`
	PackagingTypeID  *string `json:"packaging_type_id" validate:"omitempty,uuid"`
}

func (req *addProductItemRequest) toInput() (cartsvc.AddProductItemInput, error) {
	input := cartsvc.AddProductItemInput{Quantity: req.Quantity}

	variantID, err := uuid.Parse(req.ProductVariantID)
	if err != nil {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid product variant id").
			WithDetails(map[string]string{"product_variant_id": "must be a valid id"})
	}
	input.ProductVariantID = variantID

	if req.PackagingTypeID != nil {
		packagingID, err := uuid.Parse(*req.PackagingTypeID)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid packaging type id").
				WithDetails(map[string]string{"packaging_type_id": "must be a valid id"})
		}
		input.PackagingTypeID = &packagingID
	}
	return input, nil
}

type addServiceItemRequest struct {
	ServiceVariantID string              `json:"service_variant_id" validate:"required,uuid"`
	Quantity         int                 `json:"quantity" validate:"min=0"`
	MaterialOption   string              `json:"material_option"`
	SelectedAddons   []addonInputRequest `json:"selected_addons" validate:"omitempty,dive"`
}

type addonInputRequest struct {
	AddonID  string `json:"addon_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

func (req *addServiceItemRequest) toInput() (cartsvc.AddServiceItemInput, error) {
	input := cartsvc.AddServiceItemInput{Quantity: req.Quantity}

	variantID, err := uuid.Parse(req.ServiceVariantID)
	if err != nil {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid service variant id").
			WithDetails(map[string]string{"service_variant_id": "must be a valid id"})
	}
	input.ServiceVariantID = variantID

	option, err := enums.ParseMaterialOption(req.MaterialOption)
	if err != nil {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "unknown material option").
			WithDetails(map[string]string{"material_option": "must be one of none, customer_materials, shop_materials"})
	}
	input.MaterialOption = option

	for _, addon := range req.SelectedAddons {
		addonID, err := uuid.Parse(addon.AddonID)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid add-on id").
				WithDetails(map[string]string{"selected_addons": "contains an invalid add-on id"})
		}
		input.Addons = append(input.Addons, cartsvc.AddonInput{AddonID: addonID, Quantity: addon.Quantity})
	}
	return input, nil
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type setAddonRequest struct {
	AddonID string `json:"addon_id" validate:"required,uuid"`
	// Quantity pins the add-on when present (zero removes it); when absent the
	// add-on is toggled.
	Quantity *int `json:"quantity" validate:"omitempty,min=0"`
}

func (req *setAddonRequest) toInput() (cartsvc.SetAddonInput, error) {
	addonID, err := uuid.Parse(req.AddonID)
	if err != nil {
		return cartsvc.SetAddonInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid add-on id").
			WithDetails(map[string]string{"addon_id": "must be a valid id"})
	}
	return cartsvc.SetAddonInput{AddonID: addonID, Quantity: req.Quantity}, nil
}
