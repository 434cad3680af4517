package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sulavkarki/medpasal-backend/api/responses"
	"github.com/sulavkarki/medpasal-backend/api/validators"
	inventorysvc "github.com/sulavkarki/medpasal-backend/internal/inventory"
	"github.com/sulavkarki/medpasal-backend/pkg/enums"
	pkgerrors "github.com/sulavkarki/medpasal-backend/pkg/errors"
	"github.com/sulavkarki/medpasal-backend/pkg/logger"
)

type medicineRequest struct {
	Name          string  `json:"name" validate:"required"`
	Category      string  `json:"category"`
	PricePaisa    int     `json:"price_paisa" validate:"min=0"`
	CurrentStock  int     `json:"current_stock" validate:"min=0"`
	MinStockLevel int     `json:"min_stock_level" validate:"min=0"`
	ExpiryDate    *string `json:"expiry_date"`
	BatchNumber   string  `json:"batch_number"`
}

func (m medicineRequest) toInput() (inventorysvc.MedicineInput, error) {
	input := inventorysvc.MedicineInput{
		Name:          m.Name,
		Category:      m.Category,
		PricePaisa:    m.PricePaisa,
		CurrentStock:  m.CurrentStock,
		MinStockLevel: m.MinStockLevel,
		BatchNumber:   m.BatchNumber,
	}
	if m.ExpiryDate != nil && *m.ExpiryDate != "" {
		parsed, err := time.Parse("2006-01-02", *m.ExpiryDate)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expiry date must be YYYY-MM-DD")
		}
		input.ExpiryDate = &parsed
	}
	return input, nil
}

// MedicineCreate adds a manually entered medicine.
func MedicineCreate(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pharmacyID, err := pharmacyIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload medicineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		medicine, err := svc.CreateMedicine(r.Context(), pharmacyID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, medicine)
	}
}

// MedicineUpdate edits a medicine owned by the caller's pharmacy.
func MedicineUpdate(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pharmacyID, err := pharmacyIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		medicineID, err := validators.ParsePathUUID(chi.URLParam(r, "medicineId"), "medicineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload medicineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		medicine, err := svc.UpdateMedicine(r.Context(), pharmacyID, medicineID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, medicine)
	}
}

// MedicineDelete removes a medicine owned by the caller's pharmacy.
func MedicineDelete(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pharmacyID, err := pharmacyIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		medicineID, err := validators.ParsePathUUID(chi.URLParam(r, "medicineId"), "medicineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteMedicine(r.Context(), pharmacyID, medicineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// MedicineGet returns one medicine owned by the caller's pharmacy.
func MedicineGet(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pharmacyID, err := pharmacyIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		medicineID, err := validators.ParsePathUUID(chi.URLParam(r, "medicineId"), "medicineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		medicine, err := svc.GetMedicine(r.Context(), pharmacyID, medicineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, medicine)
	}
}

type stockUpdateRequest struct {
	CurrentStock  int  `json:"current_stock" validate:"min=0"`
	MinStockLevel *int `json:"min_stock_level"`
}

// MedicineUpdateStock adjusts stock columns only.
func MedicineUpdateStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pharmacyID, err := pharmacyIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		medicineID, err := validators.ParsePathUUID(chi.URLParam(r, "medicineId"), "medicineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		medicine, err := svc.UpdateStock(r.Context(), pharmacyID, medicineID, inventorysvc.StockUpdateInput{
			CurrentStock:  payload.CurrentStock,
			MinStockLevel: payload.MinStockLevel,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, medicine)
	}
}

// InventoryList returns the merged catalog with health counters. The optional
// `filter` and `source` query parameters restrict the items; counters always
// cover the whole catalog.
func InventoryList(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pharmacyID, err := pharmacyIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter *enums.InventoryFilter
		if raw := r.URL.Query().Get("filter"); raw != "" {
			parsed, err := enums.ParseInventoryFilter(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inventory filter"))
				return
			}
			filter = &parsed
		}

		var source *enums.Provenance
		if raw := r.URL.Query().Get("source"); raw != "" {
			parsed, err := enums.ParseProvenance(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid provenance source"))
				return
			}
			source = &parsed
		}

		list, err := svc.List(r.Context(), pharmacyID, filter, source)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// InventorySync materializes fulfilled purchase orders into the catalog.
func InventorySync(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pharmacyID, err := pharmacyIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SyncPurchased(r.Context(), pharmacyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
