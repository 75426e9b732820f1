package cart

import (
	"github.com/google/uuid"

	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

// AddonSelection maps add-on IDs to selected quantities. Absence means
// deselected; the map never stores zero or negative quantities. All mutating
// helpers return a fresh map so callers can diff old and new state.
type AddonSelection map[uuid.UUID]int

// SelectionFromSnapshot rebuilds the selection map from a persisted line.
func SelectionFromSnapshot(snapshot types.SelectedAddons) AddonSelection {
	selection := make(AddonSelection, len(snapshot))
	for _, addon := range snapshot {
		if addon.Quantity > 0 {
			selection[addon.AddonID] = addon.Quantity
		}
	}
	return selection
}

// Toggle flips an add-on: selected becomes deselected, deselected becomes
// selected at quantity one.
func (s AddonSelection) Toggle(addonID uuid.UUID) AddonSelection {
	next := s.clone()
	if _, ok := next[addonID]; ok {
		delete(next, addonID)
		return next
	}
	next[addonID] = 1
	return next
}

// Set pins an add-on to an explicit quantity. Zero or negative removes it.
func (s AddonSelection) Set(addonID uuid.UUID, quantity int) AddonSelection {
	next := s.clone()
	if quantity <= 0 {
		delete(next, addonID)
		return next
	}
	next[addonID] = quantity
	return next
}

func (s AddonSelection) clone() AddonSelection {
	next := make(AddonSelection, len(s))
	for id, qty := range s {
		next[id] = qty
	}
	return next
}

// BuildSnapshot materializes the selection against the service's add-on
// catalog, in catalog order, clamping each quantity to the add-on's maximum
// and snapshotting the current unit price. Selected IDs that are missing from
// the catalog or inactive are dropped.
func BuildSnapshot(catalog []models.ServiceAddon, selection AddonSelection) types.SelectedAddons {
	if len(selection) == 0 {
		return types.SelectedAddons{}
	}
	snapshot := make(types.SelectedAddons, 0, len(selection))
	for _, addon := range catalog {
		qty, ok := selection[addon.ID]
		if !ok || !addon.IsActive {
			continue
		}
		if addon.MaxQuantity != nil && qty > *addon.MaxQuantity {
			qty = *addon.MaxQuantity
		}
		if qty < 1 {
			continue
		}
		snapshot = append(snapshot, types.SelectedAddon{
			AddonID:   addon.ID,
			Name:      addon.Name,
			Quantity:  qty,
			UnitPrice: addon.UnitPrice,
		})
	}
	return snapshot
}
