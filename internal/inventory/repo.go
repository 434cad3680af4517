package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an inventory repository bound to the provided DB.
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

// CreateMedicine inserts a catalog row.
func (r *repository) CreateMedicine(ctx context.Context, medicine *models.Medicine) (*models.Medicine, error) {
	if err := r.db.WithContext(ctx).Create(medicine).Error; err != nil {
		return nil, err
	}
	return medicine, nil
}

// UpdateMedicine saves the provided catalog row.
func (r *repository) UpdateMedicine(ctx context.Context, medicine *models.Medicine) (*models.Medicine, error) {
	if err := r.db.WithContext(ctx).Save(medicine).Error; err != nil {
		return nil, err
	}
	return medicine, nil
}

// DeleteMedicine removes a catalog row owned by the pharmacy.
func (r *repository) DeleteMedicine(ctx context.Context, id, pharmacyID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND pharmacy_id = ?", id, pharmacyID).
		Delete(&models.Medicine{})
	return result.RowsAffected, result.Error
}

// FindMedicineByID loads a catalog row by id.
func (r *repository) FindMedicineByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error) {
	var row models.Medicine
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindMedicineByIDAndPharmacy loads a catalog row restricted to its owner.
func (r *repository) FindMedicineByIDAndPharmacy(ctx context.Context, id, pharmacyID uuid.UUID) (*models.Medicine, error) {
	var row models.Medicine
	err := r.db.WithContext(ctx).
		Where("id = ? AND pharmacy_id = ?", id, pharmacyID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListMedicinesByPharmacy returns the pharmacy's full catalog, manual and
// purchased rows together, oldest first.
func (r *repository) ListMedicinesByPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]models.Medicine, error) {
	var rows []models.Medicine
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStockLevels applies a column-scoped update so provenance and other
// fields cannot be overwritten by a stock adjustment.
func (r *repository) UpdateStockLevels(ctx context.Context, id, pharmacyID uuid.UUID, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("id = ? AND pharmacy_id = ?", id, pharmacyID).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// CreateSupplierOrder inserts a purchase order.
func (r *repository) CreateSupplierOrder(ctx context.Context, order *models.SupplierOrder) (*models.SupplierOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindSupplierOrderByID loads a purchase order restricted to its pharmacy.
func (r *repository) FindSupplierOrderByID(ctx context.Context, id, pharmacyID uuid.UUID) (*models.SupplierOrder, error) {
	var row models.SupplierOrder
	err := r.db.WithContext(ctx).
		Where("id = ? AND pharmacy_id = ?", id, pharmacyID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListSupplierOrders returns the pharmacy's purchase orders, newest first.
func (r *repository) ListSupplierOrders(ctx context.Context, pharmacyID uuid.UUID, status *enums.SupplierOrderStatus) ([]models.SupplierOrder, error) {
	query := r.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.SupplierOrder
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateSupplierOrderStatus performs a compare-and-swap on the purchase
// order status.
func (r *repository) UpdateSupplierOrderStatus(ctx context.Context, id, pharmacyID uuid.UUID, from, to enums.SupplierOrderStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SupplierOrder{}).
		Where("id = ? AND pharmacy_id = ? AND status = ?", id, pharmacyID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// FindUnsyncedFulfilled returns fulfilled purchase orders that have not yet
// been materialized into the catalog.
func (r *repository) FindUnsyncedFulfilled(ctx context.Context, pharmacyID uuid.UUID) ([]models.SupplierOrder, error) {
	var rows []models.SupplierOrder
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND status = ? AND synced_at IS NULL", pharmacyID, enums.SupplierOrderStatusFulfilled).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkSupplierOrderSynced stamps the purchase order as materialized.
func (r *repository) MarkSupplierOrderSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierOrder{}).
		Where("id = ?", id).
		Update("synced_at", at).Error
}
