package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem snapshots one cart line at checkout time. Unit price is the
// catalog price at the moment the order was placed and never changes after.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	MedicineID     uuid.UUID `gorm:"column:medicine_id;type:uuid;not null"`
	MedicineName   string    `gorm:"column:medicine_name;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	UnitPricePaisa int       `gorm:"column:unit_price_paisa;not null"`
	SubtotalPaisa  int       `gorm:"column:subtotal_paisa;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
