package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/internal/pricing"
	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	pkgerrors "github.com/sulavkarki/medpasal-backend/pkg/errors"
)

const (
	// MinQty and MaxQty bound a single cart line quantity.
	MinQty = 1
	MaxQty = 5
)

type medicineLoader interface {
	FindMedicineByID(ctx context.Context, id uuid.UUID) (*models.Medicine, error)
}

// Service exposes cart operations.
type Service interface {
	AddItem(ctx context.Context, userID, medicineID uuid.UUID, qty int) (*LineDTO, error)
	RemoveItem(ctx context.Context, userID, medicineID uuid.UUID) error
	Summary(ctx context.Context, userID uuid.UUID, shippingAddress string) (*SummaryDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo      CartRepository
	medicines medicineLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, medicines medicineLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if medicines == nil {
		return nil, fmt.Errorf("medicine loader required")
	}
	return &service{repo: repo, medicines: medicines}, nil
}

// AddItem creates or replaces a cart line. A repeated add for the same
// medicine overwrites the quantity rather than accumulating it.
func (s *service) AddItem(ctx context.Context, userID, medicineID uuid.UUID, qty int) (*LineDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if medicineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine id is required")
	}
	if qty < MinQty || qty > MaxQty {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between %d and %d", MinQty, MaxQty))
	}

	medicine, err := s.medicines.FindMedicineByID(ctx, medicineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load medicine")
	}
	if medicine.CurrentStock < qty {
		return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "requested quantity exceeds available stock").
			WithDetails(map[string]any{"medicine_id": medicineID, "available": medicine.CurrentStock})
	}

	item := &models.CartItem{
		UserID:     userID,
		MedicineID: medicineID,
		Qty:        qty,
	}
	saved, err := s.repo.Upsert(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart item")
	}
	saved.Medicine = medicine

	line := lineFromModel(*saved)
	return &line, nil
}

// RemoveItem deletes one cart line.
func (s *service) RemoveItem(ctx context.Context, userID, medicineID uuid.UUID) error {
	if userID == uuid.Nil || medicineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and medicine id are required")
	}
	affected, err := s.repo.DeleteItem(ctx, userID, medicineID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// Summary re-prices the cart from the live catalog. Lines whose medicine was
// removed from the catalog are dropped from the view; the stored row remains
// until the cart is cleared.
func (s *service) Summary(ctx context.Context, userID uuid.UUID, shippingAddress string) (*SummaryDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}

	summary := &SummaryDTO{Items: make([]LineDTO, 0, len(rows))}
	lines := make([]pricing.Line, 0, len(rows))
	for _, row := range rows {
		if row.Medicine == nil {
			continue
		}
		summary.Items = append(summary.Items, lineFromModel(row))
		lines = append(lines, pricing.Line{Qty: row.Qty, UnitPricePaisa: row.Medicine.PricePaisa})
	}

	quote := pricing.Compute(lines, shippingAddress)
	summary.SubtotalPaisa = quote.SubtotalPaisa
	summary.DeliveryFeePaisa = quote.DeliveryFeePaisa
	summary.TotalPaisa = quote.TotalPaisa
	return summary, nil
}

// Clear drops every line in the user's cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
