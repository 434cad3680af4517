package enums

import "fmt"

// SupplierOrderStatus tracks a pharmacy's purchase order against a supplier.
type SupplierOrderStatus string

const (
	SupplierOrderStatusPending   SupplierOrderStatus = "pending"
	SupplierOrderStatusShipped   SupplierOrderStatus = "shipped"
	SupplierOrderStatusFulfilled SupplierOrderStatus = "fulfilled"
	SupplierOrderStatusCancelled SupplierOrderStatus = "cancelled"
)

var validSupplierOrderStatuses = []SupplierOrderStatus{
	SupplierOrderStatusPending,
	SupplierOrderStatusShipped,
	SupplierOrderStatusFulfilled,
	SupplierOrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s SupplierOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SupplierOrderStatus.
func (s SupplierOrderStatus) IsValid() bool {
	for _, candidate := range validSupplierOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSupplierOrderStatus converts raw input into a SupplierOrderStatus.
func ParseSupplierOrderStatus(value string) (SupplierOrderStatus, error) {
	for _, candidate := range validSupplierOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier order status %q", value)
}
