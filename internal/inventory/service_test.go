package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sulavkarki/medpasal-backend/pkg/db"
	"github.com/sulavkarki/medpasal-backend/pkg/db/models"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
	pkgerrors "github.com/sulavkarki/medpasal-backend/pkg/errors"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS medicines (
  id TEXT PRIMARY KEY,
  pharmacy_id TEXT NOT NULL,
  name TEXT NOT NULL,
  category TEXT,
  price_paisa INTEGER NOT NULL,
  current_stock INTEGER NOT NULL DEFAULT 0,
  min_stock_level INTEGER NOT NULL DEFAULT 10,
  expiry_date DATETIME,
  batch_number TEXT,
  provenance TEXT NOT NULL DEFAULT 'manual',
  supplier_order_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_medicines_supplier_order
  ON medicines (supplier_order_id) WHERE supplier_order_id IS NOT NULL;`, `
CREATE TABLE IF NOT EXISTS supplier_orders (
  id TEXT PRIMARY KEY,
  pharmacy_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  medicine_name TEXT NOT NULL,
  category TEXT,
  qty INTEGER NOT NULL,
  unit_price_paisa INTEGER NOT NULL,
  batch_number TEXT,
  expiry_date DATETIME,
  status TEXT NOT NULL DEFAULT 'pending',
  synced_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type inventoryTestStack struct {
	conn       *gorm.DB
	svc        Service
	pharmacyID uuid.UUID
	now        time.Time
}

func newInventoryStack(t *testing.T) *inventoryTestStack {
	t.Helper()

	conn := setupInventoryTestDB(t)
	client, err := db.NewFromConn(conn)
	require.NoError(t, err)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{
		Repo: NewRepository(conn),
		Tx:   client,
		Now:  func() time.Time { return now },
	})
	require.NoError(t, err)

	return &inventoryTestStack{conn: conn, svc: svc, pharmacyID: uuid.New(), now: now}
}

func (s *inventoryTestStack) addMedicine(t *testing.T, name string, stock, minLevel int, expiry *time.Time) *MedicineDTO {
	t.Helper()
	dto, err := s.svc.CreateMedicine(context.Background(), s.pharmacyID, MedicineInput{
		Name:          name,
		PricePaisa:    10000,
		CurrentStock:  stock,
		MinStockLevel: minLevel,
		ExpiryDate:    expiry,
	})
	require.NoError(t, err)
	return dto
}

func (s *inventoryTestStack) daysFromNow(days int) *time.Time {
	ts := s.now.Add(time.Duration(days) * 24 * time.Hour)
	return &ts
}

func TestListComputesCountersAndStatuses(t *testing.T) {
	stack := newInventoryStack(t)

	stack.addMedicine(t, "Low stock", 5, 10, nil)
	stack.addMedicine(t, "Near expiry", 50, 10, stack.daysFromNow(10))
	stack.addMedicine(t, "Expired", 50, 10, stack.daysFromNow(-1))
	stack.addMedicine(t, "Healthy", 50, 10, stack.daysFromNow(40))

	list, err := stack.svc.List(context.Background(), stack.pharmacyID, nil, nil)
	require.NoError(t, err)
	require.Len(t, list.Items, 4)
	require.Equal(t, Counters{Total: 4, LowStock: 1, NearExpiry: 1, Expired: 1}, list.Counters)
}

func TestListFilterRestrictsItemsNotCounters(t *testing.T) {
	stack := newInventoryStack(t)

	stack.addMedicine(t, "Low stock", 5, 10, nil)
	stack.addMedicine(t, "Healthy", 50, 10, stack.daysFromNow(60))

	filter := enums.InventoryFilterLowStock
	list, err := stack.svc.List(context.Background(), stack.pharmacyID, &filter, nil)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, "Low stock", list.Items[0].Name)
	require.Equal(t, 2, list.Counters.Total)
}

func TestListSourceRestrictsItemsByProvenance(t *testing.T) {
	stack := newInventoryStack(t)

	stack.addMedicine(t, "Manual entry", 50, 10, nil)
	supplierOrderID := uuid.New()
	purchased := &models.Medicine{
		PharmacyID:      stack.pharmacyID,
		Name:            "Purchased entry",
		PricePaisa:      9000,
		CurrentStock:    20,
		MinStockLevel:   10,
		Provenance:      enums.ProvenancePurchased,
		SupplierOrderID: &supplierOrderID,
	}
	require.NoError(t, stack.conn.Create(purchased).Error)

	source := enums.ProvenancePurchased
	list, err := stack.svc.List(context.Background(), stack.pharmacyID, nil, &source)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, "Purchased entry", list.Items[0].Name)
	require.Equal(t, 2, list.Counters.Total)
}

func TestListLowStockBoundaryIsInclusive(t *testing.T) {
	stack := newInventoryStack(t)
	stack.addMedicine(t, "At threshold", 10, 10, nil)
	stack.addMedicine(t, "Just above", 11, 10, nil)

	list, err := stack.svc.List(context.Background(), stack.pharmacyID, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, list.Counters.LowStock)
}

func TestUpdateStockPreservesProvenance(t *testing.T) {
	stack := newInventoryStack(t)
	supplierOrderID := uuid.New()

	purchased := &models.Medicine{
		PharmacyID:      stack.pharmacyID,
		Name:            "Purchased stock",
		PricePaisa:      20000,
		CurrentStock:    30,
		Provenance:      enums.ProvenancePurchased,
		SupplierOrderID: &supplierOrderID,
	}
	require.NoError(t, stack.conn.Create(purchased).Error)

	minLevel := 15
	dto, err := stack.svc.UpdateStock(context.Background(), stack.pharmacyID, purchased.ID, StockUpdateInput{
		CurrentStock:  12,
		MinStockLevel: &minLevel,
	})
	require.NoError(t, err)
	require.Equal(t, 12, dto.CurrentStock)
	require.Equal(t, 15, dto.MinStockLevel)
	require.Equal(t, enums.ProvenancePurchased, dto.Provenance)
	require.Equal(t, enums.StockStatusLow, dto.StockStatus)
}

func TestUpdateStockUnknownMedicine(t *testing.T) {
	stack := newInventoryStack(t)

	_, err := stack.svc.UpdateStock(context.Background(), stack.pharmacyID, uuid.New(), StockUpdateInput{CurrentStock: 1})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestMedicineCRUDScopedToPharmacy(t *testing.T) {
	stack := newInventoryStack(t)
	created := stack.addMedicine(t, "Paracetamol 500mg", 50, 10, nil)

	updated, err := stack.svc.UpdateMedicine(context.Background(), stack.pharmacyID, created.ID, MedicineInput{
		Name:         "Paracetamol 650mg",
		PricePaisa:   12000,
		CurrentStock: 45,
	})
	require.NoError(t, err)
	require.Equal(t, "Paracetamol 650mg", updated.Name)

	// Another pharmacy cannot touch the row.
	_, err = stack.svc.UpdateMedicine(context.Background(), uuid.New(), created.ID, MedicineInput{
		Name:       "Hijacked",
		PricePaisa: 1,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	require.NoError(t, stack.svc.DeleteMedicine(context.Background(), stack.pharmacyID, created.ID))
	_, err = stack.svc.GetMedicine(context.Background(), stack.pharmacyID, created.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func (s *inventoryTestStack) placeAndFulfill(t *testing.T, name string, qty int) *SupplierOrderDTO {
	t.Helper()
	placed, err := s.svc.PlaceSupplierOrder(context.Background(), s.pharmacyID, SupplierOrderInput{
		SupplierID:     uuid.New(),
		MedicineName:   name,
		Qty:            qty,
		UnitPricePaisa: 9000,
		ExpiryDate:     s.daysFromNow(365),
	})
	require.NoError(t, err)

	_, err = s.svc.UpdateSupplierOrderStatus(context.Background(), s.pharmacyID, placed.ID, enums.SupplierOrderStatusShipped)
	require.NoError(t, err)
	fulfilled, err := s.svc.UpdateSupplierOrderStatus(context.Background(), s.pharmacyID, placed.ID, enums.SupplierOrderStatusFulfilled)
	require.NoError(t, err)
	return fulfilled
}

func TestSyncPurchasedIsIdempotent(t *testing.T) {
	stack := newInventoryStack(t)
	stack.placeAndFulfill(t, "Azithromycin 500mg", 40)
	stack.placeAndFulfill(t, "Vitamin D3", 25)

	first, err := stack.svc.SyncPurchased(context.Background(), stack.pharmacyID)
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)

	// Running the sync again changes nothing.
	second, err := stack.svc.SyncPurchased(context.Background(), stack.pharmacyID)
	require.NoError(t, err)
	require.Zero(t, second.Created)
	require.Equal(t, "inventory already up to date", second.Message)

	list, err := stack.svc.List(context.Background(), stack.pharmacyID, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, list.Counters.Total)
	for _, item := range list.Items {
		require.Equal(t, enums.ProvenancePurchased, item.Provenance)
	}
}

func TestSyncPurchasedIgnoresUnfulfilledOrders(t *testing.T) {
	stack := newInventoryStack(t)

	placed, err := stack.svc.PlaceSupplierOrder(context.Background(), stack.pharmacyID, SupplierOrderInput{
		SupplierID:     uuid.New(),
		MedicineName:   "Still shipping",
		Qty:            10,
		UnitPricePaisa: 5000,
	})
	require.NoError(t, err)
	_, err = stack.svc.UpdateSupplierOrderStatus(context.Background(), stack.pharmacyID, placed.ID, enums.SupplierOrderStatusShipped)
	require.NoError(t, err)

	result, err := stack.svc.SyncPurchased(context.Background(), stack.pharmacyID)
	require.NoError(t, err)
	require.Zero(t, result.Created)
}

func TestSyncPurchasedCarriesOrderDetails(t *testing.T) {
	stack := newInventoryStack(t)
	order := stack.placeAndFulfill(t, "Azithromycin 500mg", 40)

	_, err := stack.svc.SyncPurchased(context.Background(), stack.pharmacyID)
	require.NoError(t, err)

	var row models.Medicine
	require.NoError(t, stack.conn.First(&row, "supplier_order_id = ?", order.ID).Error)
	require.Equal(t, "Azithromycin 500mg", row.Name)
	require.Equal(t, 40, row.CurrentStock)
	require.Equal(t, 9000, row.PricePaisa)
	require.Equal(t, enums.ProvenancePurchased, row.Provenance)
}

func TestSupplierOrderLifecycle(t *testing.T) {
	stack := newInventoryStack(t)

	placed, err := stack.svc.PlaceSupplierOrder(context.Background(), stack.pharmacyID, SupplierOrderInput{
		SupplierID:     uuid.New(),
		MedicineName:   "Cough syrup",
		Qty:            10,
		UnitPricePaisa: 30000,
	})
	require.NoError(t, err)
	require.Equal(t, enums.SupplierOrderStatusPending, placed.Status)

	// Fulfilment requires shipment first.
	_, err = stack.svc.UpdateSupplierOrderStatus(context.Background(), stack.pharmacyID, placed.ID, enums.SupplierOrderStatusFulfilled)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	shipped, err := stack.svc.UpdateSupplierOrderStatus(context.Background(), stack.pharmacyID, placed.ID, enums.SupplierOrderStatusShipped)
	require.NoError(t, err)
	require.Equal(t, enums.SupplierOrderStatusShipped, shipped.Status)

	cancelled, err := stack.svc.UpdateSupplierOrderStatus(context.Background(), stack.pharmacyID, placed.ID, enums.SupplierOrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, enums.SupplierOrderStatusCancelled, cancelled.Status)

	// Cancelled is terminal.
	_, err = stack.svc.UpdateSupplierOrderStatus(context.Background(), stack.pharmacyID, placed.ID, enums.SupplierOrderStatusShipped)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestListSupplierOrdersFiltersByStatus(t *testing.T) {
	stack := newInventoryStack(t)
	stack.placeAndFulfill(t, "Azithromycin 500mg", 40)
	_, err := stack.svc.PlaceSupplierOrder(context.Background(), stack.pharmacyID, SupplierOrderInput{
		SupplierID:     uuid.New(),
		MedicineName:   "Vitamin C",
		Qty:            15,
		UnitPricePaisa: 4000,
	})
	require.NoError(t, err)

	pending := enums.SupplierOrderStatusPending
	rows, err := stack.svc.ListSupplierOrders(context.Background(), stack.pharmacyID, &pending)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Vitamin C", rows[0].MedicineName)
}
