package pricing

import "strings"

// Delivery fee tiers in paisa. The address heuristic is first-match-wins over
// an explicit priority list; an address matching no keyword pays the far tier.
const (
	ValleyFeePaisa   = 10000
	NearbyFeePaisa   = 20000
	MidRangeFeePaisa = 30000
	FarFeePaisa      = 50000
)

// deliveryTiers is ordered by priority. Keyword matching is a best-effort
// substring heuristic against the shipping address, not a geocoding lookup.
var deliveryTiers = []struct {
	feePaisa int
	keywords []string
}{
	{ValleyFeePaisa, []string{"kathmandu", "lalitpur", "bhaktapur", "patan", "kirtipur"}},
	{NearbyFeePaisa, []string{"banepa", "dhulikhel", "panauti", "dhading", "kavre", "nuwakot"}},
	{MidRangeFeePaisa, []string{"pokhara", "chitwan", "bharatpur", "butwal", "hetauda"}},
}

// Line is one priced cart line. Unit price is the live catalog price at the
// time the quote is computed.
type Line struct {
	Qty            int
	UnitPricePaisa int
}

// Quote is the priced outcome for a cart and destination.
type Quote struct {
	SubtotalPaisa    int `json:"subtotal_paisa"`
	DeliveryFeePaisa int `json:"delivery_fee_paisa"`
	TotalPaisa       int `json:"total_paisa"`
}

// DeliveryFeePaisaFor maps a free-text address onto a flat fee tier.
func DeliveryFeePaisaFor(address string) int {
	normalized := strings.ToLower(address)
	for _, tier := range deliveryTiers {
		for _, keyword := range tier.keywords {
			if strings.Contains(normalized, keyword) {
				return tier.feePaisa
			}
		}
	}
	return FarFeePaisa
}

// Compute prices the given lines against the destination address. It is pure;
// callers re-invoke it on every read so edits to catalog prices surface until
// an order snapshots the cart.
func Compute(lines []Line, address string) Quote {
	subtotal := 0
	for _, line := range lines {
		subtotal += line.Qty * line.UnitPricePaisa
	}
	fee := DeliveryFeePaisaFor(address)
	return Quote{
		SubtotalPaisa:    subtotal,
		DeliveryFeePaisa: fee,
		TotalPaisa:       subtotal + fee,
	}
}
