package enums

import "fmt"

// SellableKind discriminates what a cart line item sells.
type SellableKind string

const (
	SellableKindProduct SellableKind = "product"
	SellableKindService SellableKind = "service"
	// SellableKindItem is the generic fallback for rows whose sellable
	// cannot be resolved (soft-deleted or partially loaded).
	SellableKindItem SellableKind = "item"
)

var validSellableKinds = []SellableKind{
	SellableKindProduct,
	SellableKindService,
	SellableKindItem,
}

// String implements fmt.Stringer.
func (s SellableKind) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SellableKind.
func (s SellableKind) IsValid() bool {
	for _, candidate := range validSellableKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSellableKind converts raw input into a SellableKind.
func ParseSellableKind(value string) (SellableKind, error) {
	for _, candidate := range validSellableKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sellable kind %q", value)
}
