package payments

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/sulavkarki/medpasal-backend/internal/orders"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
	pkgerrors "github.com/sulavkarki/medpasal-backend/pkg/errors"
	"github.com/sulavkarki/medpasal-backend/pkg/esewa"
	"github.com/sulavkarki/medpasal-backend/pkg/logger"
)

// IdempotencyScope namespaces gateway callback dedup keys in redis.
const IdempotencyScope = "esewa"

type orderService interface {
	Get(ctx context.Context, userID, orderID uuid.UUID) (*orders.OrderDTO, error)
	FindLatestPending(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error)
	FindByTransactionRef(ctx context.Context, userID uuid.UUID, transactionRef string) (*orders.OrderDTO, error)
	Settle(ctx context.Context, orderID uuid.UUID, transactionRef string) (*orders.OrderDTO, error)
}

type pendingStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	PendingOrderKey(userID string) string
}

type formBuilder interface {
	BuildPaymentForm(totalPaisa int) (*esewa.PaymentForm, error)
}

// Service reconciles gateway payments against pending orders.
type Service interface {
	InitiatePayment(ctx context.Context, userID, orderID uuid.UUID) (*esewa.PaymentForm, error)
	HandleReturn(ctx context.Context, userID uuid.UUID, params url.Values) (*orders.OrderDTO, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Orders          orderService
	Gateway         formBuilder
	Pending         pendingStore
	Guard           *IdempotencyGuard
	Logg            *logger.Logger
	PendingOrderTTL time.Duration
}

type service struct {
	orders     orderService
	gateway    formBuilder
	pending    pendingStore
	guard      *IdempotencyGuard
	logg       *logger.Logger
	pendingTTL time.Duration
}

// NewService builds a payment service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if params.Pending == nil {
		return nil, fmt.Errorf("pending store required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	ttl := params.PendingOrderTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &service{
		orders:     params.Orders,
		gateway:    params.Gateway,
		pending:    params.Pending,
		guard:      params.Guard,
		logg:       params.Logg,
		pendingTTL: ttl,
	}, nil
}

// InitiatePayment builds the signed gateway form for a pending order and
// records which order the user is paying for, so the return redirect can be
// correlated even when the gateway omits usable references.
func (s *service) InitiatePayment(ctx context.Context, userID, orderID uuid.UUID) (*esewa.PaymentForm, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id are required")
	}

	order, err := s.orders.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != enums.PaymentMethodEsewa {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is not payable through the gateway")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment").
			WithDetails(map[string]any{"status": order.Status})
	}

	form, err := s.gateway.BuildPaymentForm(order.TotalPaisa)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build payment form")
	}

	if err := s.pending.Set(ctx, s.pending.PendingOrderKey(userID.String()), order.ID.String(), s.pendingTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record pending payment")
	}

	return form, nil
}

// HandleReturn settles the gateway redirect. The payload decode is best
// effort: a payload the gateway mangled still settles through the raw query
// parameters and the recorded pending order. Replayed callbacks return the
// already-settled order without touching it again.
func (s *service) HandleReturn(ctx context.Context, userID uuid.UUID, params url.Values) (*orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	decoded, decodeErr := DecodeCallbackData(params.Get("data"))
	if decodeErr != nil && s.logg != nil {
		s.logg.Warn(ctx, "gateway payload undecodable, falling back to raw params")
	}

	transactionRef := ResolveTransactionRef(decoded, params)
	if !IsSuccessful(decoded, transactionRef) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment was not completed").
			WithDetails(map[string]any{"status": statusOf(decoded)})
	}
	if transactionRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference missing from callback")
	}

	duplicate, err := s.guard.CheckAndMark(ctx, transactionRef)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	if duplicate {
		return s.orders.FindByTransactionRef(ctx, userID, transactionRef)
	}

	order, err := s.correlateOrder(ctx, userID, transactionRef)
	if err != nil {
		if delErr := s.guard.Delete(ctx, transactionRef); delErr != nil && s.logg != nil {
			s.logg.Error(ctx, "release idempotency mark", delErr)
		}
		return nil, err
	}

	settled, err := s.orders.Settle(ctx, order.ID, transactionRef)
	if err != nil {
		// Release the mark so the gateway's retry can succeed.
		if delErr := s.guard.Delete(ctx, transactionRef); delErr != nil && s.logg != nil {
			s.logg.Error(ctx, "release idempotency mark", delErr)
		}
		return nil, err
	}

	if err := s.pending.Del(ctx, s.pending.PendingOrderKey(userID.String())); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "clear pending payment pointer failed")
	}
	return settled, nil
}

// correlateOrder maps the returning user to the order being paid: the
// recorded pointer first, then the newest pending order, then whichever order
// already carries the reference.
func (s *service) correlateOrder(ctx context.Context, userID uuid.UUID, transactionRef string) (*orders.OrderDTO, error) {
	key := s.pending.PendingOrderKey(userID.String())
	if stored, err := s.pending.Get(ctx, key); err == nil && stored != "" {
		if orderID, parseErr := uuid.Parse(stored); parseErr == nil {
			if order, getErr := s.orders.Get(ctx, userID, orderID); getErr == nil {
				return order, nil
			}
		}
	}
	if order, err := s.orders.FindLatestPending(ctx, userID); err == nil {
		return order, nil
	}
	return s.orders.FindByTransactionRef(ctx, userID, transactionRef)
}

func statusOf(decoded *CallbackData) string {
	if decoded == nil {
		return "unknown"
	}
	return decoded.Status
}
