package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

// Repository abstracts inventory persistence for the service layer.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateMedicine(ctx context.Context, medicine *models.Medicine) (*models.Medicine, error)
	UpdateMedicine(ctx context.Context, medicine *models.Medicine) (*models.Medicine, error)
	DeleteMedicine(ctx context.Context, id, pharmacyID uuid.UUID) (int64, error)
	FindMedicineByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
	FindMedicineByIDAndPharmacy(ctx context.Context, id, pharmacyID uuid.UUID) (*models.Medicine, error)
	ListMedicinesByPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]models.Medicine, error)
	UpdateStockLevels(ctx context.Context, id, pharmacyID uuid.UUID, updates map[string]any) (int64, error)

	CreateSupplierOrder(ctx context.Context, order *models.SupplierOrder) (*models.SupplierOrder, error)
	FindSupplierOrderByID(ctx context.Context, id, pharmacyID uuid.UUID) (*models.SupplierOrder, error)
	ListSupplierOrders(ctx context.Context, pharmacyID uuid.UUID, status *enums.SupplierOrderStatus) ([]models.SupplierOrder, error)
	UpdateSupplierOrderStatus(ctx context.Context, id, pharmacyID uuid.UUID, from, to enums.SupplierOrderStatus) (int64, error)
	FindUnsyncedFulfilled(ctx context.Context, pharmacyID uuid.UUID) ([]models.SupplierOrder, error)
	MarkSupplierOrderSynced(ctx context.Context, id uuid.UUID, at time.Time) error
}
