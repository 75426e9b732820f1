package enums

import "fmt"

// MaterialOption selects the price tier for a service line item.
type MaterialOption string

const (
	MaterialOptionNone              MaterialOption = "none"
	MaterialOptionCustomerMaterials MaterialOption = "customer_materials"
	MaterialOptionShopMaterials     MaterialOption = "shop_materials"
)

var validMaterialOptions = []MaterialOption{
	MaterialOptionNone,
	MaterialOptionCustomerMaterials,
	MaterialOptionShopMaterials,
}

// String implements fmt.Stringer.
func (m MaterialOption) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MaterialOption.
func (m MaterialOption) IsValid() bool {
	for _, candidate := range validMaterialOptions {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaterialOption converts raw input into a MaterialOption. Empty input
// normalizes to MaterialOptionNone.
func ParseMaterialOption(value string) (MaterialOption, error) {
	if value == "" {
		return MaterialOptionNone, nil
	}
	for _, candidate := range validMaterialOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material option %q", value)
}
