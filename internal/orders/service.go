package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/internal/cart"
	"github.com/sulavkarki/medpasal-backend/internal/pricing"
	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
	pkgerrors "github.com/sulavkarki/medpasal-backend/pkg/errors"
	"github.com/sulavkarki/medpasal-backend/pkg/logger"
	"github.com/sulavkarki/medpasal-backend/pkg/metrics"
	"github.com/sulavkarki/medpasal-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CheckoutInput is the delivery payload collected at order placement.
type CheckoutInput struct {
	FullName        string
	ShippingAddress string
	PhoneNumber     string
	PaymentMethod   enums.PaymentMethod
}

// Service drives the order lifecycle.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*OrderDTO, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID, reason string) (*OrderDTO, error)
	Settle(ctx context.Context, orderID uuid.UUID, transactionRef string) (*OrderDTO, error)
	Transition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) (*OrderDTO, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	FindLatestPending(ctx context.Context, userID uuid.UUID) (*OrderDTO, error)
	FindByTransactionRef(ctx context.Context, userID uuid.UUID, transactionRef string) (*OrderDTO, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListDTO, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo    Repository
	Cart    cart.CartRepository
	Tx      txRunner
	Metrics *metrics.OrderMetrics
	Logg    *logger.Logger
	// Now is injectable for window tests; defaults to time.Now.
	Now func() time.Time
}

type service struct {
	repo    Repository
	cart    cart.CartRepository
	tx      txRunner
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds an order service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		cart:    params.Cart,
		tx:      params.Tx,
		metrics: params.Metrics,
		logg:    params.Logg,
		now:     now,
	}, nil
}

// Checkout converts the user's cart into an order. Stock is decremented with
// guarded updates inside one transaction; any shortfall rolls the whole
// checkout back. Item names and prices are snapshotted so later catalog edits
// never rewrite history.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.FullName == "" || input.ShippingAddress == "" || input.PhoneNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name, shipping address and phone number are required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	var saved *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txCart := s.cart.WithTx(tx)

		lines, err := txCart.ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		items := make([]models.OrderItem, 0, len(lines))
		priced := make([]pricing.Line, 0, len(lines))
		for _, line := range lines {
			medicine, err := txRepo.FindMedicineForUpdate(ctx, line.MedicineID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "medicine no longer available").
						WithDetails(map[string]any{"medicine_id": line.MedicineID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load medicine")
			}

			affected, err := txRepo.DecrementStock(ctx, medicine.ID, line.Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if affected == 0 {
				s.metrics.IncOutOfStock()
				return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock for "+medicine.Name).
					WithDetails(map[string]any{"medicine_id": medicine.ID, "available": medicine.CurrentStock})
			}

			items = append(items, models.OrderItem{
				MedicineID:     medicine.ID,
				MedicineName:   medicine.Name,
				Qty:            line.Qty,
				UnitPricePaisa: medicine.PricePaisa,
				SubtotalPaisa:  line.Qty * medicine.PricePaisa,
			})
			priced = append(priced, pricing.Line{Qty: line.Qty, UnitPricePaisa: medicine.PricePaisa})
		}

		quote := pricing.Compute(priced, input.ShippingAddress)
		order := &models.Order{
			UserID:           userID,
			FullName:         input.FullName,
			ShippingAddress:  input.ShippingAddress,
			PhoneNumber:      input.PhoneNumber,
			PaymentMethod:    input.PaymentMethod,
			Status:           enums.OrderStatusPending,
			SubtotalPaisa:    quote.SubtotalPaisa,
			DeliveryFeePaisa: quote.DeliveryFeePaisa,
			TotalPaisa:       quote.TotalPaisa,
			Items:            items,
		}
		saved, err = txRepo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		return txCart.Clear(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCreated(saved.PaymentMethod.String())
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id", saved.ID.String()), "order created")
	}
	return dtoFromModel(saved), nil
}

// Cancel applies the customer cancellation path: owner only, non-terminal,
// inside the window. Stock is restored in the same transaction as the status
// flip; a settled gateway payment marks the order as owing a refund.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID, reason string) (*OrderDTO, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id are required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason is required")
	}

	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !Cancellable(order.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
			WithDetails(map[string]any{"status": order.Status})
	}
	if !WithinCancellationWindow(order.CreatedAt, s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeCancelWindowExpired,
			fmt.Sprintf("orders can only be cancelled within %s of placement", CancellationWindow))
	}

	refundOwed := order.PaymentMethod == enums.PaymentMethodEsewa && order.TransactionRef != nil
	updates := map[string]any{
		"refund_owed":         refundOwed,
		"cancellation_reason": reason,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		affected, err := txRepo.UpdateStatus(ctx, order.ID, order.Status, enums.OrderStatusCancelled, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed, retry")
		}

		for _, item := range order.Items {
			if err := txRepo.RestoreStock(ctx, item.MedicineID, item.Qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCancelled()
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID.String()), "order cancelled")
	}
	return s.reload(ctx, order.ID)
}

// Settle confirms a pending order against a gateway transaction reference.
// Replays with the same reference are no-ops; anything else on a non-pending
// order is a conflict.
func (s *service) Settle(ctx context.Context, orderID uuid.UUID, transactionRef string) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if transactionRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if order.Status == enums.OrderStatusConfirmed &&
		order.TransactionRef != nil && *order.TransactionRef == transactionRef {
		return dtoFromModel(order), nil
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment").
			WithDetails(map[string]any{"status": order.Status})
	}

	affected, err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusConfirmed,
		map[string]any{"transaction_ref": transactionRef})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed, retry")
	}

	s.metrics.IncSettled()
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID.String()), "payment settled")
	}
	return s.reload(ctx, order.ID)
}

// Transition applies a pharmacy-side lifecycle move. Cancellation is not
// reachable here; it goes through Cancel so stock restoration and the window
// check always apply.
func (s *service) Transition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	if to == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the cancellation endpoint to cancel an order")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !CanTransition(order.Status, to) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, to))
	}

	affected, err := s.repo.UpdateStatus(ctx, order.ID, order.Status, to, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed, retry")
	}

	return s.reload(ctx, order.ID)
}

// Get returns one of the user's orders.
func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id are required")
	}
	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return dtoFromModel(order), nil
}

// FindLatestPending returns the user's newest pending order, if any.
func (s *service) FindLatestPending(ctx context.Context, userID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	order, err := s.repo.FindLatestPendingByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending order")
	}
	return dtoFromModel(order), nil
}

// FindByTransactionRef returns the user's order settled by the reference.
func (s *service) FindByTransactionRef(ctx context.Context, userID uuid.UUID, transactionRef string) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if transactionRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}
	order, err := s.repo.FindByUserAndTransactionRef(ctx, userID, transactionRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for transaction")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by transaction")
	}
	return dtoFromModel(order), nil
}

// List returns a cursor page of the user's orders.
func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, nextCursor, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := &ListDTO{Orders: make([]OrderDTO, 0, len(rows)), NextCursor: nextCursor}
	for i := range rows {
		out.Orders = append(out.Orders, *dtoFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) reload(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return dtoFromModel(order), nil
}
