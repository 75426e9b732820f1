package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SelectedAddon is one add-on chosen on a service line item, snapshotted with
// the price it was sold at.
type SelectedAddon struct {
	AddonID   uuid.UUID       `json:"addon_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SelectedAddons is an ordered slice marshaled as JSONB.
type SelectedAddons []SelectedAddon

// Value serializes the add-ons to JSON.
func (s SelectedAddons) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan decodes JSONB into the add-on slice.
func (s *SelectedAddons) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded SelectedAddons
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Total returns the aggregate add-on charge.
func (s SelectedAddons) Total() decimal.Decimal {
	total := decimal.Zero
	for _, addon := range s {
		total = total.Add(addon.UnitPrice.Mul(decimal.NewFromInt(int64(addon.Quantity))))
	}
	return total
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
