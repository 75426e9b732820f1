package cart

import (
	"testing"

	"github.com/google/uuid"

	"github.com/kofiasare/sewshop-backend/pkg/db/models"
	"github.com/kofiasare/sewshop-backend/pkg/types"
)

func TestToggleIsItsOwnInverse(t *testing.T) {
	t.Parallel()

	addonID := uuid.New()
	base := AddonSelection{}

	selected := base.Toggle(addonID)
	if qty := selected[addonID]; qty != 1 {
		t.Fatalf("expected quantity 1 after first toggle, got %d", qty)
	}
	if len(base) != 0 {
		t.Fatal("toggle mutated the source selection")
	}

	deselected := selected.Toggle(addonID)
	if _, ok := deselected[addonID]; ok {
		t.Fatal("expected addon removed after second toggle")
	}
}

func TestSetZeroRemoves(t *testing.T) {
	t.Parallel()

	addonID := uuid.New()
	selection := AddonSelection{addonID: 3}

	next := selection.Set(addonID, 0)
	if _, ok := next[addonID]; ok {
		t.Fatal("expected zero quantity to deselect")
	}
	if selection[addonID] != 3 {
		t.Fatal("set mutated the source selection")
	}
}

func TestBuildSnapshotClampsAndOrders(t *testing.T) {
	t.Parallel()

	max := 2
	first := models.ServiceAddon{ID: uuid.New(), Name: "Express", UnitPrice: dec("3000.00"), MaxQuantity: &max, IsActive: true}
	second := models.ServiceAddon{ID: uuid.New(), Name: "Lining", UnitPrice: dec("1500.00"), IsActive: true}
	inactive := models.ServiceAddon{ID: uuid.New(), Name: "Retired", UnitPrice: dec("500.00"), IsActive: false}
	catalog := []models.ServiceAddon{first, second, inactive}

	selection := AddonSelection{
		second.ID:   1,
		first.ID:    9,
		inactive.ID: 1,
		uuid.New():  4, // not in the catalog
	}

	snapshot := BuildSnapshot(catalog, selection)
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 add-ons, got %d", len(snapshot))
	}
	if snapshot[0].AddonID != first.ID || snapshot[0].Quantity != 2 {
		t.Fatalf("expected first addon clamped to 2, got %+v", snapshot[0])
	}
	if snapshot[1].AddonID != second.ID || snapshot[1].Quantity != 1 {
		t.Fatalf("expected second addon at 1, got %+v", snapshot[1])
	}
}

func TestSelectionFromSnapshotDropsZeroes(t *testing.T) {
	t.Parallel()

	kept := uuid.New()
	snapshot := types.SelectedAddons{
		{AddonID: kept, Name: "Express", Quantity: 2, UnitPrice: dec("3000.00")},
		{AddonID: uuid.New(), Name: "Ghost", Quantity: 0, UnitPrice: dec("100.00")},
	}

	selection := SelectionFromSnapshot(snapshot)
	if len(selection) != 1 || selection[kept] != 2 {
		t.Fatalf("unexpected selection: %+v", selection)
	}
}
