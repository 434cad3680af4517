package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

// SupplierOrder is a pharmacy's purchase order against a supplier. Once
// fulfilled it becomes a candidate for inventory materialization; SyncedAt
// marks that the purchased stock has been absorbed into the catalog.
type SupplierOrder struct {
	ID             uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	PharmacyID     uuid.UUID                 `gorm:"column:pharmacy_id;type:uuid;not null;index"`
	SupplierID     uuid.UUID                 `gorm:"column:supplier_id;type:uuid;not null;index"`
	MedicineName   string                    `gorm:"column:medicine_name;not null"`
	Category       string                    `gorm:"column:category"`
	Qty            int                       `gorm:"column:qty;not null"`
	UnitPricePaisa int                       `gorm:"column:unit_price_paisa;not null"`
	BatchNumber    string                    `gorm:"column:batch_number"`
	ExpiryDate     *time.Time                `gorm:"column:expiry_date"`
	Status         enums.SupplierOrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	SyncedAt       *time.Time                `gorm:"column:synced_at"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *SupplierOrder) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
