package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sulavkarki/medpasal-backend/api/responses"
	"github.com/sulavkarki/medpasal-backend/api/validators"
	paymentsvc "github.com/sulavkarki/medpasal-backend/internal/payments"
	"github.com/sulavkarki/medpasal-backend/pkg/logger"
)

type initiatePaymentRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// PaymentInitiate builds the signed gateway form for a pending order.
func PaymentInitiate(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload initiatePaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := svc.InitiatePayment(r.Context(), userID, payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, form)
	}
}

// PaymentReturn settles the gateway's return redirect against the caller's
// pending order.
func PaymentReturn(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.HandleReturn(r.Context(), userID, r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
