package enums

import "fmt"

// Provenance distinguishes manually entered inventory from inventory
// materialized out of fulfilled supplier purchase orders.
type Provenance string

const (
	ProvenanceManual    Provenance = "manual"
	ProvenancePurchased Provenance = "purchased"
)

var validProvenances = []Provenance{
	ProvenanceManual,
	ProvenancePurchased,
}

// String implements fmt.Stringer.
func (p Provenance) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Provenance.
func (p Provenance) IsValid() bool {
	for _, candidate := range validProvenances {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProvenance converts raw input into a Provenance.
func ParseProvenance(value string) (Provenance, error) {
	for _, candidate := range validProvenances {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid provenance %q", value)
}
