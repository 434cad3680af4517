package payments

import (
	"context"
	"encoding/base64"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sulavkarki/medpasal-backend/internal/orders"
	"github.com/sulavkarki/medpasal-backend/pkg/config"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
	pkgerrors "github.com/sulavkarki/medpasal-backend/pkg/errors"
	"github.com/sulavkarki/medpasal-backend/pkg/esewa"
)

type stubOrderService struct {
	byID        map[uuid.UUID]*orders.OrderDTO
	userID      uuid.UUID
	settleCalls int
	settleErr   error
}

func (s *stubOrderService) Get(ctx context.Context, userID, orderID uuid.UUID) (*orders.OrderDTO, error) {
	if userID != s.userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	order, ok := s.byID[orderID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *stubOrderService) FindLatestPending(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error) {
	for _, order := range s.byID {
		if userID == s.userID && order.Status == enums.OrderStatusPending {
			return order, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending order")
}

func (s *stubOrderService) FindByTransactionRef(ctx context.Context, userID uuid.UUID, ref string) (*orders.OrderDTO, error) {
	for _, order := range s.byID {
		if userID == s.userID && order.TransactionRef != nil && *order.TransactionRef == ref {
			return order, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for transaction")
}

func (s *stubOrderService) Settle(ctx context.Context, orderID uuid.UUID, ref string) (*orders.OrderDTO, error) {
	if s.settleErr != nil {
		return nil, s.settleErr
	}
	order, ok := s.byID[orderID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status == enums.OrderStatusConfirmed && order.TransactionRef != nil && *order.TransactionRef == ref {
		return order, nil
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
	}
	s.settleCalls++
	order.Status = enums.OrderStatusConfirmed
	order.TransactionRef = &ref
	return order, nil
}

type fakeKV struct {
	values map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "key not found")
	}
	return value, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeKV) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := f.values[key]; exists {
		return false, nil
	}
	f.values[key] = "1"
	return true, nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeKV) IdempotencyKey(scope, id string) string {
	return "mp:idempotency:" + scope + ":" + id
}

func (f *fakeKV) PendingOrderKey(userID string) string {
	return "mp:pending_order:" + userID
}

func esewaTestConfig() config.EsewaConfig {
	return config.EsewaConfig{
		ProductCode: "EPAYTEST",
		SecretKey:   "8gBm/:&EnhH.1/q",
		FormURL:     "https://rc-epay.esewa.com.np/api/epay/main/v2/form",
		SuccessURL:  "https://medpasal.example/payments/esewa/return",
		FailureURL:  "https://medpasal.example/payments/esewa/failure",
	}
}

type paymentTestStack struct {
	svc    Service
	orders *stubOrderService
	kv     *fakeKV
	userID uuid.UUID
	order  *orders.OrderDTO
}

func newPaymentStack(t *testing.T, method enums.PaymentMethod) *paymentTestStack {
	t.Helper()

	userID := uuid.New()
	order := &orders.OrderDTO{
		ID:            uuid.New(),
		Status:        enums.OrderStatusPending,
		PaymentMethod: method,
		TotalPaisa:    64000,
	}
	stubOrders := &stubOrderService{
		byID:   map[uuid.UUID]*orders.OrderDTO{order.ID: order},
		userID: userID,
	}

	gateway, err := esewa.NewClient(context.Background(), esewaTestConfig(), nil)
	require.NoError(t, err)

	kv := newFakeKV()
	guard, err := NewIdempotencyGuard(kv, time.Hour, IdempotencyScope)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Orders:          stubOrders,
		Gateway:         gateway,
		Pending:         kv,
		Guard:           guard,
		PendingOrderTTL: time.Hour,
	})
	require.NoError(t, err)

	return &paymentTestStack{svc: svc, orders: stubOrders, kv: kv, userID: userID, order: order}
}

func encodeCallback(t *testing.T, payload string) url.Values {
	t.Helper()
	return url.Values{"data": {base64.StdEncoding.EncodeToString([]byte(payload))}}
}

func TestInitiatePaymentBuildsFormAndRecordsPointer(t *testing.T) {
	stack := newPaymentStack(t, enums.PaymentMethodEsewa)

	form, err := stack.svc.InitiatePayment(context.Background(), stack.userID, stack.order.ID)
	require.NoError(t, err)
	require.Equal(t, "640.00", form.Fields["total_amount"])
	require.NotEmpty(t, form.Fields["signature"])

	stored, err := stack.kv.Get(context.Background(), stack.kv.PendingOrderKey(stack.userID.String()))
	require.NoError(t, err)
	require.Equal(t, stack.order.ID.String(), stored)
}

func TestInitiatePaymentRejectsCashOrders(t *testing.T) {
	stack := newPaymentStack(t, enums.PaymentMethodCashOnDelivery)

	_, err := stack.svc.InitiatePayment(context.Background(), stack.userID, stack.order.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestInitiatePaymentRejectsSettledOrders(t *testing.T) {
	stack := newPaymentStack(t, enums.PaymentMethodEsewa)
	stack.order.Status = enums.OrderStatusConfirmed

	_, err := stack.svc.InitiatePayment(context.Background(), stack.userID, stack.order.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestHandleReturnSettlesPendingOrder(t *testing.T) {
	stack := newPaymentStack(t, enums.PaymentMethodEsewa)
	_, err := stack.svc.InitiatePayment(context.Background(), stack.userID, stack.order.ID)
	require.NoError(t, err)

	settled, err := stack.svc.HandleReturn(context.Background(), stack.userID,
		encodeCallback(t, `{"status":"COMPLETE","transaction_code":"ABC123"}`))
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, settled.Status)
	require.Equal(t, "ABC123", *settled.TransactionRef)
	require.Equal(t, 1, stack.orders.settleCalls)

	// Pointer is cleared after settlement.
	_, err = stack.kv.Get(context.Background(), stack.kv.PendingOrderKey(stack.userID.String()))
	require.Error(t, err)
}

func TestHandleReturnReplayDoesNotDoubleSettle(t *testing.T) {
	stack := newPaymentStack(t, enums.PaymentMethodEsewa)
	params := encodeCallback(t, `{"status":"COMPLETE","transaction_code":"ABC123"}`)

	_, err := stack.svc.HandleReturn(context.Background(), stack.userID, params)
	require.NoError(t, err)

	replayed, err := stack.svc.HandleReturn(context.Background(), stack.userID, params)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, replayed.Status)
	require.Equal(t, 1, stack.orders.settleCalls)
}

func TestHandleReturnSettlesDecodedOidOnlyPayload(t *testing.T) {
	stack := newPaymentStack(t, enums.PaymentMethodEsewa)

	settled, err := stack.svc.HandleReturn(context.Background(), stack.userID,
		encodeCallback(t, `{"status":"COMPLETE","oid":"OID-77"}`))
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, settled.Status)
	require.Equal(t, "OID-77", *settled.TransactionRef)
	require.Equal(t, 1, stack.orders.settleCalls)
}

func TestHandleReturnFallsBackToRawParams(t *testing.T) {
	stack := newPaymentStack(t, enums.PaymentMethodEsewa)

	settled, err := stack.svc.HandleReturn(context.Background(), stack.userID,
		url.Values{"data": {"%%%garbage%%%"}, "oid": {"RAW-77"}})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, settled.Status)
	require.Equal(t, "RAW-77", *settled.TransactionRef)
}

func TestHandleReturnRejectsIncompletePayment(t *testing.T) {
	stack := newPaymentStack(t, enums.PaymentMethodEsewa)

	_, err := stack.svc.HandleReturn(context.Background(), stack.userID,
		encodeCallback(t, `{"status":"PENDING","transaction_code":"ABC123"}`))
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	require.Zero(t, stack.orders.settleCalls)
}

func TestHandleReturnRejectsEmptyCallback(t *testing.T) {
	stack := newPaymentStack(t, enums.PaymentMethodEsewa)

	_, err := stack.svc.HandleReturn(context.Background(), stack.userID, url.Values{})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestHandleReturnReleasesMarkOnSettleFailure(t *testing.T) {
	stack := newPaymentStack(t, enums.PaymentMethodEsewa)
	stack.orders.settleErr = pkgerrors.New(pkgerrors.CodeDependency, "db down")

	params := encodeCallback(t, `{"status":"COMPLETE","transaction_code":"ABC123"}`)
	_, err := stack.svc.HandleReturn(context.Background(), stack.userID, params)
	require.Error(t, err)

	// The retry succeeds once the dependency recovers.
	stack.orders.settleErr = nil
	settled, err := stack.svc.HandleReturn(context.Background(), stack.userID, params)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, settled.Status)
}
