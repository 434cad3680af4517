package inventory

import (
	"time"

	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

// NearExpiryWindow is how far ahead of the expiry date a medicine is flagged.
const NearExpiryWindow = 30 * 24 * time.Hour

// ExpiryStatusOf classifies a medicine's expiry date against now. A medicine
// without an expiry date is treated as OK; expiry is checked against the end
// of the recorded date, so a medicine expiring today is not yet expired.
func ExpiryStatusOf(expiryDate *time.Time, now time.Time) enums.ExpiryStatus {
	if expiryDate == nil {
		return enums.ExpiryStatusOK
	}
	if expiryDate.Before(now) {
		return enums.ExpiryStatusExpired
	}
	if !expiryDate.After(now.Add(NearExpiryWindow)) {
		return enums.ExpiryStatusNearExpiry
	}
	return enums.ExpiryStatusOK
}

// StockStatusOf flags stock at or below the minimum level.
func StockStatusOf(currentStock, minStockLevel int) enums.StockStatus {
	if minStockLevel <= 0 {
		minStockLevel = models.DefaultMinStockLevel
	}
	if currentStock <= minStockLevel {
		return enums.StockStatusLow
	}
	return enums.StockStatusOK
}
