package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
	"github.com/sulavkarki/medpasal-backend/pkg/pagination"
)

// repository persists orders and applies the stock mutations tied to their
// lifecycle. Stock math happens in guarded single-statement updates so two
// concurrent checkouts can never drive stock negative.
type repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the order and its item snapshots in one write.
func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its item snapshots.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDAndUser loads an order restricted to its owner.
func (r *repository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindLatestPendingByUser returns the user's most recent pending order. Used
// as the correlation fallback when a gateway return carries no usable order
// reference.
func (r *repository) FindLatestPendingByUser(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status = ?", userID, enums.OrderStatusPending).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByUserAndTransactionRef locates the order a settlement reference was
// recorded against. Used to resolve replayed gateway callbacks.
func (r *repository) FindByUserAndTransactionRef(ctx context.Context, userID uuid.UUID, transactionRef string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND transaction_ref = ?", userID, transactionRef).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns a cursor page of the user's orders, newest first.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// UpdateStatus performs a compare-and-swap on the order status. The returned
// row count is zero when the order was not in the expected status, which
// callers treat as losing the transition race.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (int64, error) {
	assignments := map[string]any{"status": to}
	for k, v := range updates {
		assignments[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(assignments)
	return result.RowsAffected, result.Error
}

// FindMedicineForUpdate loads a catalog row inside the current transaction so
// checkout snapshots the price it is about to decrement against.
func (r *repository) FindMedicineForUpdate(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	var row models.Medicine
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DecrementStock atomically subtracts qty, guarded so stock never goes
// negative. Zero rows affected means insufficient stock.
func (r *repository) DecrementStock(ctx context.Context, medicineID uuid.UUID, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("id = ? AND current_stock >= ?", medicineID, qty).
		Update("current_stock", gorm.Expr("current_stock - ?", qty))
	return result.RowsAffected, result.Error
}

// RestoreStock adds qty back after a cancellation.
func (r *repository) RestoreStock(ctx context.Context, medicineID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("id = ?", medicineID).
		Update("current_stock", gorm.Expr("current_stock + ?", qty)).Error
}
