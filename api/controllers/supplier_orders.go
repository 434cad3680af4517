package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sulavkarki/medpasal-backend/api/responses"
	"github.com/sulavkarki/medpasal-backend/api/validators"
	inventorysvc "github.com/sulavkarki/medpasal-backend/internal/inventory"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
	pkgerrors "github.com/sulavkarki/medpasal-backend/pkg/errors"
	"github.com/sulavkarki/medpasal-backend/pkg/logger"
)

type supplierOrderRequest struct {
	SupplierID     uuid.UUID `json:"supplier_id" validate:"required"`
	MedicineName   string    `json:"medicine_name" validate:"required"`
	Category       string    `json:"category"`
	Qty            int       `json:"qty" validate:"required,min=1"`
	UnitPricePaisa int       `json:"unit_price_paisa" validate:"min=0"`
	BatchNumber    string    `json:"batch_number"`
	ExpiryDate     *string   `json:"expiry_date"`
}

// SupplierOrderPlace records a new purchase order.
func SupplierOrderPlace(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pharmacyID, err := pharmacyIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload supplierOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := inventorysvc.SupplierOrderInput{
			SupplierID:     payload.SupplierID,
			MedicineName:   payload.MedicineName,
			Category:       payload.Category,
			Qty:            payload.Qty,
			UnitPricePaisa: payload.UnitPricePaisa,
			BatchNumber:    payload.BatchNumber,
		}
		if payload.ExpiryDate != nil && *payload.ExpiryDate != "" {
			parsed, err := time.Parse("2006-01-02", *payload.ExpiryDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expiry date must be YYYY-MM-DD"))
				return
			}
			input.ExpiryDate = &parsed
		}

		order, err := svc.PlaceSupplierOrder(r.Context(), pharmacyID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// SupplierOrderList returns the pharmacy's purchase orders, optionally
// filtered by the `status` query parameter.
func SupplierOrderList(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pharmacyID, err := pharmacyIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.SupplierOrderStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := enums.ParseSupplierOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier order status"))
				return
			}
			status = &parsed
		}

		orders, err := svc.ListSupplierOrders(r.Context(), pharmacyID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

type supplierOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SupplierOrderTransition moves a purchase order through its lifecycle.
func SupplierOrderTransition(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pharmacyID, err := pharmacyIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "supplierOrderId"), "supplierOrderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload supplierOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseSupplierOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier order status"))
			return
		}

		order, err := svc.UpdateSupplierOrderStatus(r.Context(), pharmacyID, orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
