package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/sulavkarki/medpasal-backend/internal/cart"
	inventorysvc "github.com/sulavkarki/medpasal-backend/internal/inventory"
	ordersvc "github.com/sulavkarki/medpasal-backend/internal/orders"
	pkgAuth "github.com/sulavkarki/medpasal-backend/pkg/auth"
	"github.com/sulavkarki/medpasal-backend/pkg/config"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
	"github.com/sulavkarki/medpasal-backend/pkg/esewa"
	"github.com/sulavkarki/medpasal-backend/pkg/logger"
	"github.com/sulavkarki/medpasal-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) AddItem(ctx context.Context, userID, medicineID uuid.UUID, qty int) (*cartsvc.LineDTO, error) {
	return &cartsvc.LineDTO{}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, userID, medicineID uuid.UUID) error {
	return nil
}

func (stubCartService) Summary(ctx context.Context, userID uuid.UUID, shippingAddress string) (*cartsvc.SummaryDTO, error) {
	return &cartsvc.SummaryDTO{}, nil
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubOrderService struct{}

func (stubOrderService) Checkout(ctx context.Context, userID uuid.UUID, input ordersvc.CheckoutInput) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

func (stubOrderService) Cancel(ctx context.Context, userID, orderID uuid.UUID, reason string) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

func (stubOrderService) Settle(ctx context.Context, orderID uuid.UUID, transactionRef string) (*ordersvc.OrderDTO, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubOrderService) Transition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

func (stubOrderService) Get(ctx context.Context, userID, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

func (stubOrderService) FindLatestPending(ctx context.Context, userID uuid.UUID) (*ordersvc.OrderDTO, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubOrderService) FindByTransactionRef(ctx context.Context, userID uuid.UUID, transactionRef string) (*ordersvc.OrderDTO, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubOrderService) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ordersvc.ListDTO, error) {
	return &ordersvc.ListDTO{}, nil
}

type stubPaymentService struct{}

func (stubPaymentService) InitiatePayment(ctx context.Context, userID, orderID uuid.UUID) (*esewa.PaymentForm, error) {
	return &esewa.PaymentForm{}, nil
}

func (stubPaymentService) HandleReturn(ctx context.Context, userID uuid.UUID, params url.Values) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

type stubInventoryService struct{}

func (stubInventoryService) CreateMedicine(ctx context.Context, pharmacyID uuid.UUID, input inventorysvc.MedicineInput) (*inventorysvc.MedicineDTO, error) {
	return &inventorysvc.MedicineDTO{}, nil
}

func (stubInventoryService) UpdateMedicine(ctx context.Context, pharmacyID, medicineID uuid.UUID, input inventorysvc.MedicineInput) (*inventorysvc.MedicineDTO, error) {
	return &inventorysvc.MedicineDTO{}, nil
}

func (stubInventoryService) DeleteMedicine(ctx context.Context, pharmacyID, medicineID uuid.UUID) error {
	return nil
}

func (stubInventoryService) GetMedicine(ctx context.Context, pharmacyID, medicineID uuid.UUID) (*inventorysvc.MedicineDTO, error) {
	return &inventorysvc.MedicineDTO{}, nil
}

func (stubInventoryService) UpdateStock(ctx context.Context, pharmacyID, medicineID uuid.UUID, input inventorysvc.StockUpdateInput) (*inventorysvc.MedicineDTO, error) {
	return &inventorysvc.MedicineDTO{}, nil
}

func (stubInventoryService) List(ctx context.Context, pharmacyID uuid.UUID, filter *enums.InventoryFilter, source *enums.Provenance) (*inventorysvc.ListDTO, error) {
	return &inventorysvc.ListDTO{}, nil
}

func (stubInventoryService) PlaceSupplierOrder(ctx context.Context, pharmacyID uuid.UUID, input inventorysvc.SupplierOrderInput) (*inventorysvc.SupplierOrderDTO, error) {
	return &inventorysvc.SupplierOrderDTO{}, nil
}

func (stubInventoryService) UpdateSupplierOrderStatus(ctx context.Context, pharmacyID, orderID uuid.UUID, to enums.SupplierOrderStatus) (*inventorysvc.SupplierOrderDTO, error) {
	return &inventorysvc.SupplierOrderDTO{}, nil
}

func (stubInventoryService) ListSupplierOrders(ctx context.Context, pharmacyID uuid.UUID, status *enums.SupplierOrderStatus) ([]inventorysvc.SupplierOrderDTO, error) {
	return nil, nil
}

func (stubInventoryService) SyncPurchased(ctx context.Context, pharmacyID uuid.UUID) (*inventorysvc.SyncResultDTO, error) {
	return &inventorysvc.SyncResultDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "medpasal-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		nil,
		stubCartService{},
		stubOrderService{},
		stubPaymentService{},
		stubInventoryService{},
	)
}

func customerToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func pharmacyToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	pharmacyID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:     uuid.New(),
		Role:       enums.UserRolePharmacy,
		PharmacyID: &pharmacyID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/summary", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCartSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/summary", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPharmacyGroupRequiresPharmacyRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pharmacy/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer role got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/pharmacy/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+pharmacyToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for pharmacy role got %d", resp.Code)
	}
}

func TestOrderTransitionRequiresPharmacyRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	target := fmt.Sprintf("/api/v1/orders/%s/status", uuid.New())
	req := httptest.NewRequest(http.MethodPost, target, nil)
	req.Header.Set("Authorization", "Bearer "+customerToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer role got %d", resp.Code)
	}
}
