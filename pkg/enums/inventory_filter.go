package enums

import "fmt"

// InventoryFilter restricts an inventory query to one health bucket.
type InventoryFilter string

const (
	InventoryFilterLowStock   InventoryFilter = "low_stock"
	InventoryFilterNearExpiry InventoryFilter = "near_expiry"
	InventoryFilterExpired    InventoryFilter = "expired"
)

var validInventoryFilters = []InventoryFilter{
	InventoryFilterLowStock,
	InventoryFilterNearExpiry,
	InventoryFilterExpired,
}

// String implements fmt.Stringer.
func (f InventoryFilter) String() string {
	return string(f)
}

// IsValid reports whether the value is a known InventoryFilter.
func (f InventoryFilter) IsValid() bool {
	for _, candidate := range validInventoryFilters {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseInventoryFilter converts raw input into an InventoryFilter.
func ParseInventoryFilter(value string) (InventoryFilter, error) {
	for _, candidate := range validInventoryFilters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory filter %q", value)
}
