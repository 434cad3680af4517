package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/pkg/db"
	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
	pkgerrors "github.com/sulavkarki/medpasal-backend/pkg/errors"
	"github.com/sulavkarki/medpasal-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

var supplierOrderTransitions = map[enums.SupplierOrderStatus][]enums.SupplierOrderStatus{
	enums.SupplierOrderStatusPending: {enums.SupplierOrderStatusShipped, enums.SupplierOrderStatusCancelled},
	enums.SupplierOrderStatusShipped: {enums.SupplierOrderStatusFulfilled, enums.SupplierOrderStatusCancelled},
}

func supplierOrderCanTransition(from, to enums.SupplierOrderStatus) bool {
	for _, candidate := range supplierOrderTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// MedicineInput captures the fields a pharmacy manages on a catalog row.
type MedicineInput struct {
	Name          string
	Category      string
	PricePaisa    int
	CurrentStock  int
	MinStockLevel int
	ExpiryDate    *time.Time
	BatchNumber   string
}

// SupplierOrderInput captures a new purchase order.
type SupplierOrderInput struct {
	SupplierID     uuid.UUID
	MedicineName   string
	Category       string
	Qty            int
	UnitPricePaisa int
	BatchNumber    string
	ExpiryDate     *time.Time
}

// StockUpdateInput adjusts the stock columns of one catalog row.
type StockUpdateInput struct {
	CurrentStock  int
	MinStockLevel *int
}

// Service exposes the pharmacy inventory operations.
type Service interface {
	CreateMedicine(ctx context.Context, pharmacyID uuid.UUID, input MedicineInput) (*MedicineDTO, error)
	UpdateMedicine(ctx context.Context, pharmacyID, medicineID uuid.UUID, input MedicineInput) (*MedicineDTO, error)
	DeleteMedicine(ctx context.Context, pharmacyID, medicineID uuid.UUID) error
	GetMedicine(ctx context.Context, pharmacyID, medicineID uuid.UUID) (*MedicineDTO, error)
	UpdateStock(ctx context.Context, pharmacyID, medicineID uuid.UUID, input StockUpdateInput) (*MedicineDTO, error)
	List(ctx context.Context, pharmacyID uuid.UUID, filter *enums.InventoryFilter, source *enums.Provenance) (*ListDTO, error)

	PlaceSupplierOrder(ctx context.Context, pharmacyID uuid.UUID, input SupplierOrderInput) (*SupplierOrderDTO, error)
	UpdateSupplierOrderStatus(ctx context.Context, pharmacyID, orderID uuid.UUID, to enums.SupplierOrderStatus) (*SupplierOrderDTO, error)
	ListSupplierOrders(ctx context.Context, pharmacyID uuid.UUID, status *enums.SupplierOrderStatus) ([]SupplierOrderDTO, error)
	SyncPurchased(ctx context.Context, pharmacyID uuid.UUID) (*SyncResultDTO, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo Repository
	Tx   txRunner
	Logg *logger.Logger
	// Now is injectable for expiry classification tests; defaults to time.Now.
	Now func() time.Time
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds an inventory service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo: params.Repo,
		tx:   params.Tx,
		logg: params.Logg,
		now:  now,
	}, nil
}

// CreateMedicine adds a manually entered catalog row.
func (s *service) CreateMedicine(ctx context.Context, pharmacyID uuid.UUID, input MedicineInput) (*MedicineDTO, error) {
	if pharmacyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pharmacy id is required")
	}
	if err := validateMedicineInput(input); err != nil {
		return nil, err
	}

	row := &models.Medicine{
		PharmacyID:    pharmacyID,
		Name:          input.Name,
		Category:      input.Category,
		PricePaisa:    input.PricePaisa,
		CurrentStock:  input.CurrentStock,
		MinStockLevel: input.MinStockLevel,
		ExpiryDate:    input.ExpiryDate,
		BatchNumber:   input.BatchNumber,
		Provenance:    enums.ProvenanceManual,
	}
	saved, err := s.repo.CreateMedicine(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist medicine")
	}

	dto := medicineDTO(*saved, s.now())
	return &dto, nil
}

// UpdateMedicine edits a catalog row. Provenance and the supplier order link
// are never touched: a purchased row stays purchased through edits.
func (s *service) UpdateMedicine(ctx context.Context, pharmacyID, medicineID uuid.UUID, input MedicineInput) (*MedicineDTO, error) {
	if pharmacyID == uuid.Nil || medicineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pharmacy id and medicine id are required")
	}
	if err := validateMedicineInput(input); err != nil {
		return nil, err
	}

	row, err := s.repo.FindMedicineByIDAndPharmacy(ctx, medicineID, pharmacyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load medicine")
	}

	row.Name = input.Name
	row.Category = input.Category
	row.PricePaisa = input.PricePaisa
	row.CurrentStock = input.CurrentStock
	if input.MinStockLevel > 0 {
		row.MinStockLevel = input.MinStockLevel
	}
	row.ExpiryDate = input.ExpiryDate
	row.BatchNumber = input.BatchNumber

	saved, err := s.repo.UpdateMedicine(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist medicine")
	}
	dto := medicineDTO(*saved, s.now())
	return &dto, nil
}

// DeleteMedicine removes a catalog row.
func (s *service) DeleteMedicine(ctx context.Context, pharmacyID, medicineID uuid.UUID) error {
	if pharmacyID == uuid.Nil || medicineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "pharmacy id and medicine id are required")
	}
	affected, err := s.repo.DeleteMedicine(ctx, medicineID, pharmacyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete medicine")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
	}
	return nil
}

// GetMedicine returns one catalog row with computed statuses.
func (s *service) GetMedicine(ctx context.Context, pharmacyID, medicineID uuid.UUID) (*MedicineDTO, error) {
	if pharmacyID == uuid.Nil || medicineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pharmacy id and medicine id are required")
	}
	row, err := s.repo.FindMedicineByIDAndPharmacy(ctx, medicineID, pharmacyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load medicine")
	}
	dto := medicineDTO(*row, s.now())
	return &dto, nil
}

// UpdateStock adjusts the stock columns only, leaving provenance and catalog
// details intact.
func (s *service) UpdateStock(ctx context.Context, pharmacyID, medicineID uuid.UUID, input StockUpdateInput) (*MedicineDTO, error) {
	if pharmacyID == uuid.Nil || medicineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pharmacy id and medicine id are required")
	}
	if input.CurrentStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.MinStockLevel != nil && *input.MinStockLevel <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock level must be positive")
	}

	updates := map[string]any{"current_stock": input.CurrentStock}
	if input.MinStockLevel != nil {
		updates["min_stock_level"] = *input.MinStockLevel
	}

	affected, err := s.repo.UpdateStockLevels(ctx, medicineID, pharmacyID, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
	}
	return s.GetMedicine(ctx, pharmacyID, medicineID)
}

// List returns the merged manual and purchased catalog with health counters.
// Counters always cover the whole catalog regardless of the item filter, and
// are recomputed from the rows on every call.
func (s *service) List(ctx context.Context, pharmacyID uuid.UUID, filter *enums.InventoryFilter, source *enums.Provenance) (*ListDTO, error) {
	if pharmacyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pharmacy id is required")
	}
	if filter != nil && !filter.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory filter")
	}
	if source != nil && !source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid provenance source")
	}

	rows, err := s.repo.ListMedicinesByPharmacy(ctx, pharmacyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list medicines")
	}

	now := s.now()
	out := &ListDTO{Items: make([]MedicineDTO, 0, len(rows))}
	out.Counters.Total = len(rows)

	for _, row := range rows {
		dto := medicineDTO(row, now)
		if dto.StockStatus == enums.StockStatusLow {
			out.Counters.LowStock++
		}
		switch dto.ExpiryStatus {
		case enums.ExpiryStatusNearExpiry:
			out.Counters.NearExpiry++
		case enums.ExpiryStatusExpired:
			out.Counters.Expired++
		}
		if source != nil && dto.Provenance != *source {
			continue
		}
		if matchesFilter(dto, filter) {
			out.Items = append(out.Items, dto)
		}
	}
	return out, nil
}

// PlaceSupplierOrder records a new purchase order against a supplier.
func (s *service) PlaceSupplierOrder(ctx context.Context, pharmacyID uuid.UUID, input SupplierOrderInput) (*SupplierOrderDTO, error) {
	if pharmacyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pharmacy id is required")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	if input.MedicineName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine name is required")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.UnitPricePaisa < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	row := &models.SupplierOrder{
		PharmacyID:     pharmacyID,
		SupplierID:     input.SupplierID,
		MedicineName:   input.MedicineName,
		Category:       input.Category,
		Qty:            input.Qty,
		UnitPricePaisa: input.UnitPricePaisa,
		BatchNumber:    input.BatchNumber,
		ExpiryDate:     input.ExpiryDate,
		Status:         enums.SupplierOrderStatusPending,
	}
	saved, err := s.repo.CreateSupplierOrder(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist supplier order")
	}
	dto := supplierOrderDTO(*saved)
	return &dto, nil
}

// UpdateSupplierOrderStatus moves a purchase order through its lifecycle.
func (s *service) UpdateSupplierOrderStatus(ctx context.Context, pharmacyID, orderID uuid.UUID, to enums.SupplierOrderStatus) (*SupplierOrderDTO, error) {
	if pharmacyID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pharmacy id and order id are required")
	}
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	row, err := s.repo.FindSupplierOrderByID(ctx, orderID, pharmacyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier order")
	}

	if !supplierOrderCanTransition(row.Status, to) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move supplier order from %s to %s", row.Status, to))
	}

	affected, err := s.repo.UpdateSupplierOrderStatus(ctx, orderID, pharmacyID, row.Status, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier order")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "supplier order status changed, retry")
	}

	return s.getSupplierOrder(ctx, pharmacyID, orderID)
}

// ListSupplierOrders returns the pharmacy's purchase orders.
func (s *service) ListSupplierOrders(ctx context.Context, pharmacyID uuid.UUID, status *enums.SupplierOrderStatus) ([]SupplierOrderDTO, error) {
	if pharmacyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pharmacy id is required")
	}
	rows, err := s.repo.ListSupplierOrders(ctx, pharmacyID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier orders")
	}
	out := make([]SupplierOrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, supplierOrderDTO(row))
	}
	return out, nil
}

// SyncPurchased materializes fulfilled purchase orders into catalog rows with
// purchased provenance. The unique supplier order link makes the whole
// operation idempotent: replaying a sync creates nothing new and reports the
// inventory as already up to date.
func (s *service) SyncPurchased(ctx context.Context, pharmacyID uuid.UUID) (*SyncResultDTO, error) {
	if pharmacyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pharmacy id is required")
	}

	result := &SyncResultDTO{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		candidates, err := txRepo.FindUnsyncedFulfilled(ctx, pharmacyID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find fulfilled supplier orders")
		}

		now := s.now()
		for _, candidate := range candidates {
			supplierOrderID := candidate.ID
			row := &models.Medicine{
				PharmacyID:      pharmacyID,
				Name:            candidate.MedicineName,
				Category:        candidate.Category,
				PricePaisa:      candidate.UnitPricePaisa,
				CurrentStock:    candidate.Qty,
				ExpiryDate:      candidate.ExpiryDate,
				BatchNumber:     candidate.BatchNumber,
				Provenance:      enums.ProvenancePurchased,
				SupplierOrderID: &supplierOrderID,
			}
			if _, err := txRepo.CreateMedicine(ctx, row); err != nil {
				if db.IsUniqueViolation(err, "") {
					result.Skipped++
				} else {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "materialize purchased medicine")
				}
			} else {
				result.Created++
			}
			if err := txRepo.MarkSupplierOrderSynced(ctx, supplierOrderID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark supplier order synced")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case result.Created > 0:
		result.Message = fmt.Sprintf("synced %d purchased medicine(s) into inventory", result.Created)
	default:
		result.Message = "inventory already up to date"
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithPharmacyID(ctx, pharmacyID.String()), result.Message)
	}
	return result, nil
}

func (s *service) getSupplierOrder(ctx context.Context, pharmacyID, orderID uuid.UUID) (*SupplierOrderDTO, error) {
	row, err := s.repo.FindSupplierOrderByID(ctx, orderID, pharmacyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload supplier order")
	}
	dto := supplierOrderDTO(*row)
	return &dto, nil
}

func matchesFilter(dto MedicineDTO, filter *enums.InventoryFilter) bool {
	if filter == nil {
		return true
	}
	switch *filter {
	case enums.InventoryFilterLowStock:
		return dto.StockStatus == enums.StockStatusLow
	case enums.InventoryFilterNearExpiry:
		return dto.ExpiryStatus == enums.ExpiryStatusNearExpiry
	case enums.InventoryFilterExpired:
		return dto.ExpiryStatus == enums.ExpiryStatusExpired
	default:
		return false
	}
}

func validateMedicineInput(input MedicineInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "medicine name is required")
	}
	if input.PricePaisa < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.CurrentStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.MinStockLevel < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum stock level cannot be negative")
	}
	return nil
}
