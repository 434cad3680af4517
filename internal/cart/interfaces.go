package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
)

// CartRepository abstracts cart persistence for the service layer.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Upsert(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	DeleteItem(ctx context.Context, userID, medicineID uuid.UUID) (int64, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}
