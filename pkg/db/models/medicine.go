package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

// DefaultMinStockLevel applies when a pharmacy never set a threshold.
const DefaultMinStockLevel = 10

// Medicine is the catalog record for a single stocked item. Stock is mutated
// only by order transitions and by the purchased-order sync.
type Medicine struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	PharmacyID      uuid.UUID        `gorm:"column:pharmacy_id;type:uuid;not null;index"`
	Name            string           `gorm:"column:name;not null"`
	Category        string           `gorm:"column:category"`
	PricePaisa      int              `gorm:"column:price_paisa;not null"`
	CurrentStock    int              `gorm:"column:current_stock;not null;default:0"`
	MinStockLevel   int              `gorm:"column:min_stock_level;not null;default:10"`
	ExpiryDate      *time.Time       `gorm:"column:expiry_date"`
	BatchNumber     string           `gorm:"column:batch_number"`
	Provenance      enums.Provenance `gorm:"column:provenance;type:text;not null;default:'manual'"`
	SupplierOrderID *uuid.UUID       `gorm:"column:supplier_order_id;type:uuid;uniqueIndex:idx_medicines_supplier_order"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Medicine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.MinStockLevel <= 0 {
		m.MinStockLevel = DefaultMinStockLevel
	}
	return nil
}
