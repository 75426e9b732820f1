package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kofiasare/sewshop-backend/internal/pricing"
	"github.com/kofiasare/sewshop-backend/internal/sellable"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
	pkgerrors "github.com/kofiasare/sewshop-backend/pkg/errors"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
)

// Service exposes the storefront cart operations.
type Service interface {
	GetCart(ctx context.Context, clientToken string) (*models.CartRecord, error)
	AddProductItem(ctx context.Context, clientToken string, input AddProductItemInput) (*MutationResult, error)
	AddServiceItem(ctx context.Context, clientToken string, input AddServiceItemInput) (*MutationResult, error)
	UpdateItemQuantity(ctx context.Context, clientToken string, itemID uuid.UUID, quantity int) (*MutationResult, error)
	SetItemAddon(ctx context.Context, clientToken string, itemID uuid.UUID, input SetAddonInput) (*MutationResult, error)
	RemoveItem(ctx context.Context, clientToken string, itemID uuid.UUID) (*MutationResult, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	catalog  catalogLoader
	tax      pricing.TaxCalculator
	shipping pricing.ShippingCalculator
	currency enums.Currency
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(
	repo CartRepository,
	tx txRunner,
	catalog catalogLoader,
	tax pricing.TaxCalculator,
	shipping pricing.ShippingCalculator,
	currency enums.Currency,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if tax == nil || shipping == nil {
		return nil, fmt.Errorf("pricing calculators required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !currency.IsValid() {
		currency = enums.CurrencyNGN
	}
	return &service{
		repo:     repo,
		tx:       tx,
		catalog:  catalog,
		tax:      tax,
		shipping: shipping,
		currency: currency,
		logg:     logg,
	}, nil
}

// AddProductItemInput captures a product line addition.
type AddProductItemInput struct {
	ProductVariantID uuid.UUID
	Quantity         int
	PackagingTypeID  *uuid.UUID
}

// AddServiceItemInput captures a service line addition.
type AddServiceItemInput struct {
	ServiceVariantID uuid.UUID
	Quantity         int
	MaterialOption   enums.MaterialOption
	Addons           []AddonInput
}

// AddonInput selects one add-on with a quantity.
type AddonInput struct {
	AddonID  uuid.UUID
	Quantity int
}

// SetAddonInput changes one add-on on an existing service line. A nil
// quantity toggles the add-on; an explicit quantity pins it (zero removes).
type SetAddonInput struct {
	AddonID  uuid.UUID
	Quantity *int
}

// StockWarning reports a quantity the shop could not fully honor.
type StockWarning struct {
	ItemID         uuid.UUID
	Requested      int
	Applied        int
	AvailableStock int
}

// MutationResult carries the refreshed cart and any stock adjustments.
type MutationResult struct {
	Cart     *models.CartRecord
	Warnings []StockWarning
}

// GetCart returns the client's active cart, creating an empty one on first
// touch. Stored totals are verified against a fresh fold and healed when they
// disagree.
func (s *service) GetCart(ctx context.Context, clientToken string) (*models.CartRecord, error) {
	record, err := s.ensureCart(ctx, clientToken)
	if err != nil {
		return nil, err
	}

	summary := Fold(record.Items, s.tax, s.shipping)
	if !summary.Matches(record) {
		ctx = s.logg.WithCartID(ctx, record.ID.String())
		s.logg.Warn(ctx, "stored cart totals diverged from fold, healing")
		summary.Apply(record)
		if _, err := s.repo.Update(ctx, record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to heal cart totals")
		}
	}
	return record, nil
}

// AddProductItem appends a product variant to the cart, merging into an
// existing line for the same variant and packaging choice.
func (s *service) AddProductItem(ctx context.Context, clientToken string, input AddProductItemInput) (*MutationResult, error) {
	if input.ProductVariantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product variant id is required").
			WithDetails(map[string]string{"product_variant_id": "is required"})
	}

	variant, err := s.catalog.ProductVariant(ctx, input.ProductVariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product variant")
	}
	if !variant.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "this product is no longer available")
	}
	if variant.TrackInventory && variant.AvailableStock < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "this product is out of stock")
	}

	var packaging *models.PackagingType
	if input.PackagingTypeID != nil {
		packaging, err = s.catalog.PackagingType(ctx, *input.PackagingTypeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown packaging type").
					WithDetails(map[string]string{"packaging_type_id": "does not exist"})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load packaging type")
		}
		if packaging.ProductID != variant.ProductID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "packaging does not belong to this product").
				WithDetails(map[string]string{"packaging_type_id": "does not belong to this product"})
		}
	}

	record, err := s.ensureCart(ctx, clientToken)
	if err != nil {
		return nil, err
	}

	stock := stockLimit(variant)
	result := &MutationResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing := findProductLine(record.Items, variant.ID, input.PackagingTypeID)
		if existing != nil {
			updated := *existing
			requested := existing.Quantity + input.Quantity
			updated.Quantity = ClampQuantity(requested, stock)
			updated.UnitPrice = variant.Price
			updated.Subtotal = ComputeSubtotal(updated)
			if _, err := repo.UpdateItem(ctx, &updated); err != nil {
				return err
			}
			result.Warnings = appendStockWarning(result.Warnings, updated.ID, requested, updated.Quantity, stock)
			return s.refold(ctx, repo, record)
		}

		position, err := repo.NextPosition(ctx, record.ID)
		if err != nil {
			return err
		}
		variantID := variant.ID
		quantity := ClampQuantity(input.Quantity, stock)
		item := models.CartItem{
			CartID:           record.ID,
			SellableType:     models.SellableTypeProductVariant,
			SellableID:       variant.ID,
			ProductVariantID: &variantID,
			Quantity:         quantity,
			UnitPrice:        variant.Price,
			Position:         position,
		}
		if packaging != nil {
			packagingID := packaging.ID
			packagingName := packaging.Name
			item.PackagingTypeID = &packagingID
			item.PackagingName = &packagingName
		}
		item.Subtotal = ComputeSubtotal(item)
		created, err := repo.CreateItem(ctx, &item)
		if err != nil {
			return err
		}
		result.Warnings = appendStockWarning(result.Warnings, created.ID, input.Quantity, quantity, stock)
		return s.refold(ctx, repo, record)
	})
	if err != nil {
		return nil, wrapMutationErr(err, "failed to add product to cart")
	}

	return s.finishMutation(ctx, record.ID, result)
}

// AddServiceItem appends a service variant line with its material option and
// add-on selection. Service lines are never merged; each addition is its own
// configurable line.
func (s *service) AddServiceItem(ctx context.Context, clientToken string, input AddServiceItemInput) (*MutationResult, error) {
	if input.ServiceVariantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service variant id is required").
			WithDetails(map[string]string{"service_variant_id": "is required"})
	}
	if !input.MaterialOption.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown material option").
			WithDetails(map[string]string{"material_option": "must be one of none, customer_materials, shop_materials"})
	}

	variant, err := s.catalog.ServiceVariant(ctx, input.ServiceVariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load service variant")
	}
	if !variant.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "this service is no longer offered")
	}
	if variant.Service != nil && !variant.Service.HasMaterialOptions && input.MaterialOption != enums.MaterialOptionNone {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "this service does not take material options").
			WithDetails(map[string]string{"material_option": "not supported by this service"})
	}

	catalogAddons, err := s.catalog.ServiceAddons(ctx, variant.ServiceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load service add-ons")
	}
	selection, err := selectionFromInputs(input.Addons, catalogAddons)
	if err != nil {
		return nil, err
	}

	record, err := s.ensureCart(ctx, clientToken)
	if err != nil {
		return nil, err
	}

	result := &MutationResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		position, err := repo.NextPosition(ctx, record.ID)
		if err != nil {
			return err
		}

		variantID := variant.ID
		option := input.MaterialOption
		item := models.CartItem{
			CartID:           record.ID,
			SellableType:     models.SellableTypeServiceVariant,
			SellableID:       variant.ID,
			ServiceVariantID: &variantID,
			Quantity:         ClampQuantity(input.Quantity, nil),
			UnitPrice:        TierPrice(variant, input.MaterialOption),
			MaterialOption:   &option,
			SelectedAddons:   BuildSnapshot(catalogAddons, selection),
			Position:         position,
		}
		item.Subtotal = ComputeSubtotal(item)
		if _, err := repo.CreateItem(ctx, &item); err != nil {
			return err
		}
		return s.refold(ctx, repo, record)
	})
	if err != nil {
		return nil, wrapMutationErr(err, "failed to add service to cart")
	}

	return s.finishMutation(ctx, record.ID, result)
}

// UpdateItemQuantity sets a line's quantity, clamped to available stock for
// tracked product variants. The clamp is reported as a warning, not an error.
func (s *service) UpdateItemQuantity(ctx context.Context, clientToken string, itemID uuid.UUID, quantity int) (*MutationResult, error) {
	record, item, err := s.loadItem(ctx, clientToken, itemID)
	if err != nil {
		return nil, err
	}

	ref := sellable.Resolve(*item)
	result := &MutationResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		updated := *item
		updated.Quantity = ClampQuantity(quantity, ref.AvailableStock)
		updated.Subtotal = ComputeSubtotal(updated)
		if _, err := repo.UpdateItem(ctx, &updated); err != nil {
			return err
		}
		result.Warnings = appendStockWarning(result.Warnings, updated.ID, quantity, updated.Quantity, ref.AvailableStock)
		return s.refold(ctx, repo, record)
	})
	if err != nil {
		return nil, wrapMutationErr(err, "failed to update item quantity")
	}

	return s.finishMutation(ctx, record.ID, result)
}

// SetItemAddon toggles or pins one add-on on a service line and reprices it.
func (s *service) SetItemAddon(ctx context.Context, clientToken string, itemID uuid.UUID, input SetAddonInput) (*MutationResult, error) {
	if input.AddonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "addon id is required").
			WithDetails(map[string]string{"addon_id": "is required"})
	}

	record, item, err := s.loadItem(ctx, clientToken, itemID)
	if err != nil {
		return nil, err
	}
	if item.SellableType != models.SellableTypeServiceVariant || item.ServiceVariant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "add-ons only apply to service items").
			WithDetails(map[string]string{"item_id": "is not a service item"})
	}

	catalogAddons, err := s.catalog.ServiceAddons(ctx, item.ServiceVariant.ServiceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load service add-ons")
	}
	if !addonExists(catalogAddons, input.AddonID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown add-on for this service").
			WithDetails(map[string]string{"addon_id": "does not belong to this service"})
	}

	selection := SelectionFromSnapshot(item.SelectedAddons)
	if input.Quantity == nil {
		selection = selection.Toggle(input.AddonID)
	} else {
		selection = selection.Set(input.AddonID, *input.Quantity)
	}

	result := &MutationResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		updated := *item
		updated.SelectedAddons = BuildSnapshot(catalogAddons, selection)
		updated.Subtotal = ComputeSubtotal(updated)
		if _, err := repo.UpdateItem(ctx, &updated); err != nil {
			return err
		}
		return s.refold(ctx, repo, record)
	})
	if err != nil {
		return nil, wrapMutationErr(err, "failed to update add-ons")
	}

	return s.finishMutation(ctx, record.ID, result)
}

// RemoveItem deletes one line and refolds the cart.
func (s *service) RemoveItem(ctx context.Context, clientToken string, itemID uuid.UUID) (*MutationResult, error) {
	record, _, err := s.loadItem(ctx, clientToken, itemID)
	if err != nil {
		return nil, err
	}

	result := &MutationResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteItem(ctx, record.ID, itemID); err != nil {
			return err
		}
		return s.refold(ctx, repo, record)
	})
	if err != nil {
		return nil, wrapMutationErr(err, "failed to remove cart item")
	}

	return s.finishMutation(ctx, record.ID, result)
}

func (s *service) ensureCart(ctx context.Context, clientToken string) (*models.CartRecord, error) {
	if clientToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required").
			WithDetails(map[string]string{"cart_token": "is required"})
	}

	record, err := s.repo.FindActiveByToken(ctx, clientToken)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart")
	}

	created, err := s.repo.Create(ctx, &models.CartRecord{
		ClientToken: clientToken,
		Status:      enums.CartStatusActive,
		Currency:    s.currency,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create cart")
	}
	return created, nil
}

func (s *service) loadItem(ctx context.Context, clientToken string, itemID uuid.UUID) (*models.CartRecord, *models.CartItem, error) {
	record, err := s.ensureCart(ctx, clientToken)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.repo.FindItem(ctx, record.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart item")
	}
	return record, item, nil
}

// refold reloads the lines and writes freshly computed totals back onto the
// record inside the caller's transaction.
func (s *service) refold(ctx context.Context, repo CartRepository, record *models.CartRecord) error {
	items, err := repo.ListItems(ctx, record.ID)
	if err != nil {
		return err
	}
	summary := Fold(items, s.tax, s.shipping)
	summary.Apply(record)
	_, err = repo.Update(ctx, record)
	return err
}

// finishMutation reloads the cart outside the transaction so the caller sees
// the persisted state with all associations.
func (s *service) finishMutation(ctx context.Context, cartID uuid.UUID, result *MutationResult) (*MutationResult, error) {
	record, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to reload cart")
	}
	result.Cart = record
	return result, nil
}

func selectionFromInputs(inputs []AddonInput, catalog []models.ServiceAddon) (AddonSelection, error) {
	selection := AddonSelection{}
	for _, in := range inputs {
		if !addonExists(catalog, in.AddonID) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown add-on for this service").
				WithDetails(map[string]string{"addon_id": in.AddonID.String()})
		}
		selection = selection.Set(in.AddonID, in.Quantity)
	}
	return selection, nil
}

func addonExists(catalog []models.ServiceAddon, id uuid.UUID) bool {
	for _, addon := range catalog {
		if addon.ID == id {
			return true
		}
	}
	return false
}

func findProductLine(items []models.CartItem, variantID uuid.UUID, packagingTypeID *uuid.UUID) *models.CartItem {
	for i := range items {
		item := &items[i]
		if item.SellableType != models.SellableTypeProductVariant {
			continue
		}
		if item.ProductVariantID == nil || *item.ProductVariantID != variantID {
			continue
		}
		if samePackaging(item.PackagingTypeID, packagingTypeID) {
			return item
		}
	}
	return nil
}

func samePackaging(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func stockLimit(variant *models.ProductVariant) *int {
	if variant == nil || !variant.TrackInventory {
		return nil
	}
	stock := variant.AvailableStock
	return &stock
}

func appendStockWarning(warnings []StockWarning, itemID uuid.UUID, requested, applied int, stock *int) []StockWarning {
	if requested <= applied || stock == nil {
		return warnings
	}
	return append(warnings, StockWarning{
		ItemID:         itemID,
		Requested:      requested,
		Applied:        applied,
		AvailableStock: *stock,
	})
}

func wrapMutationErr(err error, msg string) error {
	if coded := pkgerrors.As(err); coded != nil {
		return coded
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
