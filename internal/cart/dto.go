package cart

import (
	"github.com/google/uuid"

	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
)

// LineDTO is one cart line priced against the live catalog.
type LineDTO struct {
	MedicineID     uuid.UUID `json:"medicine_id"`
	MedicineName   string    `json:"medicine_name"`
	Qty            int       `json:"qty"`
	UnitPricePaisa int       `json:"unit_price_paisa"`
	SubtotalPaisa  int       `json:"subtotal_paisa"`
	InStock        bool      `json:"in_stock"`
}

// SummaryDTO is the priced view of a user's cart.
type SummaryDTO struct {
	Items            []LineDTO `json:"items"`
	SubtotalPaisa    int       `json:"subtotal_paisa"`
	DeliveryFeePaisa int       `json:"delivery_fee_paisa"`
	TotalPaisa       int       `json:"total_paisa"`
}

func lineFromModel(item models.CartItem) LineDTO {
	line := LineDTO{
		MedicineID: item.MedicineID,
		Qty:        item.Qty,
	}
	if item.Medicine != nil {
		line.MedicineName = item.Medicine.Name
		line.UnitPricePaisa = item.Medicine.PricePaisa
		line.SubtotalPaisa = item.Qty * item.Medicine.PricePaisa
		line.InStock = item.Medicine.CurrentStock >= item.Qty
	}
	return line
}
