package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

func TestExpiryStatusOf(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	dateAt := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	tests := []struct {
		name   string
		expiry *time.Time
		want   enums.ExpiryStatus
	}{
		{name: "no expiry date", expiry: nil, want: enums.ExpiryStatusOK},
		{name: "expired yesterday", expiry: dateAt(-24 * time.Hour), want: enums.ExpiryStatusExpired},
		{name: "ten days out", expiry: dateAt(10 * 24 * time.Hour), want: enums.ExpiryStatusNearExpiry},
		{name: "exactly thirty days out", expiry: dateAt(NearExpiryWindow), want: enums.ExpiryStatusNearExpiry},
		{name: "forty days out", expiry: dateAt(40 * 24 * time.Hour), want: enums.ExpiryStatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExpiryStatusOf(tt.expiry, now))
		})
	}
}

func TestStockStatusOf(t *testing.T) {
	require.Equal(t, enums.StockStatusLow, StockStatusOf(0, 10))
	require.Equal(t, enums.StockStatusLow, StockStatusOf(10, 10))
	require.Equal(t, enums.StockStatusOK, StockStatusOf(11, 10))

	// A missing threshold falls back to the default of 10.
	require.Equal(t, enums.StockStatusLow, StockStatusOf(10, 0))
	require.Equal(t, enums.StockStatusOK, StockStatusOf(11, 0))
}
