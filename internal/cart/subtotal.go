package cart

import (
	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/enums"
)

// UnlimitedStock is the clamp ceiling used when a variant does not track
// inventory.
const UnlimitedStock = 1_000_000

// ComputeSubtotal returns the line subtotal from the persisted snapshot:
// unit price times quantity, plus the add-on charges for service lines.
// It never mutates the item.
func ComputeSubtotal(item models.CartItem) decimal.Decimal {
	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}
	subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
	if item.SellableType == models.SellableTypeServiceVariant {
		subtotal = subtotal.Add(item.SelectedAddons.Total())
	}
	if subtotal.IsNegative() {
		return decimal.Zero
	}
	return subtotal
}

// TierPrice selects the unit price for a service variant under the given
// material option. Tiers only apply when the parent service declares material
// options; a missing tier price falls back to the base price.
func TierPrice(variant *models.ServiceVariant, option enums.MaterialOption) decimal.Decimal {
	if variant == nil {
		return decimal.Zero
	}
	if variant.Service == nil || !variant.Service.HasMaterialOptions {
		return variant.BasePrice
	}
	switch option {
	case enums.MaterialOptionCustomerMaterials:
		if variant.CustomerMaterialsPrice != nil {
			return *variant.CustomerMaterialsPrice
		}
	case enums.MaterialOptionShopMaterials:
		if variant.ShopMaterialsPrice != nil {
			return *variant.ShopMaterialsPrice
		}
	}
	return variant.BasePrice
}

// ClampQuantity bounds a requested quantity to [1, stock]. A nil stock means
// the sellable is not stock-limited (services, untracked variants).
func ClampQuantity(requested int, availableStock *int) int {
	if requested < 1 {
		return 1
	}
	max := UnlimitedStock
	if availableStock != nil && *availableStock < max {
		max = *availableStock
	}
	if max < 1 {
		max = 1
	}
	if requested > max {
		return max
	}
	return requested
}
