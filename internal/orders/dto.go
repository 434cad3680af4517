package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

// ItemDTO is a snapshot line on a placed order. Prices are frozen at checkout
// and never re-read from the catalog.
type ItemDTO struct {
	MedicineID     uuid.UUID `json:"medicine_id"`
	MedicineName   string    `json:"medicine_name"`
	Qty            int       `json:"qty"`
	UnitPricePaisa int       `json:"unit_price_paisa"`
	SubtotalPaisa  int       `json:"subtotal_paisa"`
}

// OrderDTO is the API view of an order.
type OrderDTO struct {
	ID                 uuid.UUID           `json:"id"`
	Status             enums.OrderStatus   `json:"status"`
	PaymentMethod      enums.PaymentMethod `json:"payment_method"`
	FullName           string              `json:"full_name"`
	ShippingAddress    string              `json:"shipping_address"`
	PhoneNumber        string              `json:"phone_number"`
	SubtotalPaisa      int                 `json:"subtotal_paisa"`
	DeliveryFeePaisa   int                 `json:"delivery_fee_paisa"`
	TotalPaisa         int                 `json:"total_paisa"`
	TransactionRef     *string             `json:"transaction_ref,omitempty"`
	RefundOwed         bool                `json:"refund_owed"`
	CancellationReason *string             `json:"cancellation_reason,omitempty"`
	CancellableUntil   *time.Time          `json:"cancellable_until,omitempty"`
	Items              []ItemDTO           `json:"items"`
	CreatedAt          time.Time           `json:"created_at"`
}

// ListDTO is one cursor page of orders.
type ListDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func dtoFromModel(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:                 order.ID,
		Status:             order.Status,
		PaymentMethod:      order.PaymentMethod,
		FullName:           order.FullName,
		ShippingAddress:    order.ShippingAddress,
		PhoneNumber:        order.PhoneNumber,
		SubtotalPaisa:      order.SubtotalPaisa,
		DeliveryFeePaisa:   order.DeliveryFeePaisa,
		TotalPaisa:         order.TotalPaisa,
		TransactionRef:     order.TransactionRef,
		RefundOwed:         order.RefundOwed,
		CancellationReason: order.CancellationReason,
		Items:              make([]ItemDTO, 0, len(order.Items)),
		CreatedAt:          order.CreatedAt,
	}
	if Cancellable(order.Status) {
		deadline := order.CreatedAt.Add(CancellationWindow)
		dto.CancellableUntil = &deadline
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, ItemDTO{
			MedicineID:     item.MedicineID,
			MedicineName:   item.MedicineName,
			Qty:            item.Qty,
			UnitPricePaisa: item.UnitPricePaisa,
			SubtotalPaisa:  item.SubtotalPaisa,
		})
	}
	return dto
}
