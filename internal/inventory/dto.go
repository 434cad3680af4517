package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

// MedicineDTO is the pharmacy-facing view of one catalog row, with its
// health statuses computed at read time.
type MedicineDTO struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Category      string             `json:"category,omitempty"`
	PricePaisa    int                `json:"price_paisa"`
	CurrentStock  int                `json:"current_stock"`
	MinStockLevel int                `json:"min_stock_level"`
	ExpiryDate    *time.Time         `json:"expiry_date,omitempty"`
	BatchNumber   string             `json:"batch_number,omitempty"`
	Provenance    enums.Provenance   `json:"provenance"`
	StockStatus   enums.StockStatus  `json:"stock_status"`
	ExpiryStatus  enums.ExpiryStatus `json:"expiry_status"`
	CreatedAt     time.Time          `json:"created_at"`
}

// Counters are aggregate health figures recomputed on every listing, never
// cached or stored.
type Counters struct {
	Total      int `json:"total"`
	LowStock   int `json:"low_stock"`
	NearExpiry int `json:"near_expiry"`
	Expired    int `json:"expired"`
}

// ListDTO is the inventory view: the (possibly filtered) items plus counters
// over the whole catalog.
type ListDTO struct {
	Items    []MedicineDTO `json:"items"`
	Counters Counters      `json:"counters"`
}

// SyncResultDTO reports the outcome of a purchased-stock sync.
type SyncResultDTO struct {
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Message string `json:"message"`
}

// SupplierOrderDTO is the API view of a purchase order.
type SupplierOrderDTO struct {
	ID             uuid.UUID                 `json:"id"`
	SupplierID     uuid.UUID                 `json:"supplier_id"`
	MedicineName   string                    `json:"medicine_name"`
	Category       string                    `json:"category,omitempty"`
	Qty            int                       `json:"qty"`
	UnitPricePaisa int                       `json:"unit_price_paisa"`
	BatchNumber    string                    `json:"batch_number,omitempty"`
	ExpiryDate     *time.Time                `json:"expiry_date,omitempty"`
	Status         enums.SupplierOrderStatus `json:"status"`
	SyncedAt       *time.Time                `json:"synced_at,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

func medicineDTO(row models.Medicine, now time.Time) MedicineDTO {
	return MedicineDTO{
		ID:            row.ID,
		Name:          row.Name,
		Category:      row.Category,
		PricePaisa:    row.PricePaisa,
		CurrentStock:  row.CurrentStock,
		MinStockLevel: row.MinStockLevel,
		ExpiryDate:    row.ExpiryDate,
		BatchNumber:   row.BatchNumber,
		Provenance:    row.Provenance,
		StockStatus:   StockStatusOf(row.CurrentStock, row.MinStockLevel),
		ExpiryStatus:  ExpiryStatusOf(row.ExpiryDate, now),
		CreatedAt:     row.CreatedAt,
	}
}

func supplierOrderDTO(row models.SupplierOrder) SupplierOrderDTO {
	return SupplierOrderDTO{
		ID:             row.ID,
		SupplierID:     row.SupplierID,
		MedicineName:   row.MedicineName,
		Category:       row.Category,
		Qty:            row.Qty,
		UnitPricePaisa: row.UnitPricePaisa,
		BatchNumber:    row.BatchNumber,
		ExpiryDate:     row.ExpiryDate,
		Status:         row.Status,
		SyncedAt:       row.SyncedAt,
		CreatedAt:      row.CreatedAt,
	}
}
