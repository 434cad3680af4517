package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeliveryFeeTiers(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    int
	}{
		{name: "valley capital", address: "Kathmandu, Baneshwor", want: ValleyFeePaisa},
		{name: "valley lowercase", address: "ward 4, lalitpur", want: ValleyFeePaisa},
		{name: "nearby town", address: "Banepa Bazar", want: NearbyFeePaisa},
		{name: "mid range city", address: "Lakeside, Pokhara", want: MidRangeFeePaisa},
		{name: "unknown address", address: "Main Street, Springfield", want: FarFeePaisa},
		{name: "empty address", address: "", want: FarFeePaisa},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DeliveryFeePaisaFor(tt.address))
		})
	}
}

func TestDeliveryFeePriorityOrderWins(t *testing.T) {
	// An address mentioning both a valley and a mid-range keyword resolves to
	// the higher-priority valley tier.
	require.Equal(t, ValleyFeePaisa, DeliveryFeePaisaFor("Kathmandu road, Pokhara"))
}

func TestComputeSubtotalAndTotal(t *testing.T) {
	lines := []Line{
		{Qty: 2, UnitPricePaisa: 15000},
		{Qty: 1, UnitPricePaisa: 8000},
	}

	quote := Compute(lines, "Bhaktapur Durbar Square")
	require.Equal(t, 38000, quote.SubtotalPaisa)
	require.Equal(t, ValleyFeePaisa, quote.DeliveryFeePaisa)
	require.Equal(t, 48000, quote.TotalPaisa)
}

func TestComputeEmptyCart(t *testing.T) {
	quote := Compute(nil, "Kathmandu")
	require.Equal(t, 0, quote.SubtotalPaisa)
	require.Equal(t, ValleyFeePaisa, quote.DeliveryFeePaisa)
}
