package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sulavkarki/medpasal-backend/api/controllers"
	"github.com/sulavkarki/medpasal-backend/api/middleware"
	cartsvc "github.com/sulavkarki/medpasal-backend/internal/cart"
	inventorysvc "github.com/sulavkarki/medpasal-backend/internal/inventory"
	ordersvc "github.com/sulavkarki/medpasal-backend/internal/orders"
	paymentsvc "github.com/sulavkarki/medpasal-backend/internal/payments"
	"github.com/sulavkarki/medpasal-backend/pkg/config"
	"github.com/sulavkarki/medpasal-backend/pkg/db"
	"github.com/sulavkarki/medpasal-backend/pkg/logger"
	"github.com/sulavkarki/medpasal-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	registry *prometheus.Registry,
	cartService cartsvc.Service,
	orderService ordersvc.Service,
	paymentService paymentsvc.Service,
	inventoryService inventorysvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Liveness())
		r.Get("/ready", controllers.Readiness(dbP, redisP, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/summary", controllers.CartSummary(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{medicineId}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{medicineId}", controllers.CartRemoveItem(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(orderService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Get("/{orderId}", controllers.OrderGet(orderService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(orderService, logg))
			r.With(middleware.RequireRole("pharmacy", logg)).
				Post("/{orderId}/status", controllers.OrderTransition(orderService, logg))
		})

		r.Route("/payments/esewa", func(r chi.Router) {
			r.Post("/initiate", controllers.PaymentInitiate(paymentService, logg))
			r.Get("/return", controllers.PaymentReturn(paymentService, logg))
		})

		r.Route("/pharmacy", func(r chi.Router) {
			r.Use(middleware.RequireRole("pharmacy", logg))

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", controllers.InventoryList(inventoryService, logg))
				r.Post("/sync", controllers.InventorySync(inventoryService, logg))
			})

			r.Route("/medicines", func(r chi.Router) {
				r.Post("/", controllers.MedicineCreate(inventoryService, logg))
				r.Get("/{medicineId}", controllers.MedicineGet(inventoryService, logg))
				r.Patch("/{medicineId}", controllers.MedicineUpdate(inventoryService, logg))
				r.Delete("/{medicineId}", controllers.MedicineDelete(inventoryService, logg))
				r.Patch("/{medicineId}/stock", controllers.MedicineUpdateStock(inventoryService, logg))
			})

			r.Route("/supplier-orders", func(r chi.Router) {
				r.Post("/", controllers.SupplierOrderPlace(inventoryService, logg))
				r.Get("/", controllers.SupplierOrderList(inventoryService, logg))
				r.Post("/{supplierOrderId}/status", controllers.SupplierOrderTransition(inventoryService, logg))
			})
		})
	})

	return r
}
