package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
	"github.com/sulavkarki/medpasal-backend/pkg/pagination"
)

// Repository abstracts order persistence for the service layer.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	FindLatestPendingByUser(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	FindByUserAndTransactionRef(ctx context.Context, userID uuid.UUID, transactionRef string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (int64, error)
	FindMedicineForUpdate(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
	DecrementStock(ctx context.Context, medicineID uuid.UUID, qty int) (int64, error)
	RestoreStock(ctx context.Context, medicineID uuid.UUID, qty int) error
}
