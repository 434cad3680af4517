package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

// Order is the immutable record produced at checkout. Orders are never
// deleted; cancellation is a status transition.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	FullName           string              `gorm:"column:full_name;not null"`
	ShippingAddress    string              `gorm:"column:shipping_address;not null"`
	PhoneNumber        string              `gorm:"column:phone_number;not null"`
	PaymentMethod      enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Status             enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	SubtotalPaisa      int                 `gorm:"column:subtotal_paisa;not null"`
	DeliveryFeePaisa   int                 `gorm:"column:delivery_fee_paisa;not null"`
	TotalPaisa         int                 `gorm:"column:total_paisa;not null"`
	TransactionRef     *string             `gorm:"column:transaction_ref"`
	CancellationReason *string             `gorm:"column:cancellation_reason"`
	RefundOwed         bool                `gorm:"column:refund_owed;not null;default:false"`
	Items              []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
