package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vancetran/medisupply-backend/api/middleware"
	"github.com/vancetran/medisupply-backend/api/responses"
	"github.com/vancetran/medisupply-backend/api/validators"
	"github.com/vancetran/medisupply-backend/internal/inventory"
	"github.com/vancetran/medisupply-backend/pkg/enums"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
	"github.com/vancetran/medisupply-backend/pkg/logger"
)

type createWarehouseRequest struct {
	Code    string  `json:"code" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Address *string `json:"address,omitempty"`
}

func CreateWarehouse(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createWarehouseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse, err := svc.CreateWarehouse(r.Context(), inventory.WarehouseInput{
			Code:    strings.ToUpper(strings.TrimSpace(payload.Code)),
			Name:    strings.TrimSpace(payload.Name),
			Address: payload.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, warehouse)
	}
}

func ListWarehouses(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouses, err := svc.ListWarehouses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, warehouses)
	}
}

type adjustStockRequest struct {
	WarehouseID string  `json:"warehouse_id" validate:"required,uuid"`
	VariantID   string  `json:"variant_id" validate:"required,uuid"`
	Type        string  `json:"type" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,min=0"`
	Reference   *string `json:"reference,omitempty"`
	Note        *string `json:"note,omitempty"`
}

func AdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouseID, err := validators.ParsePathUUID(payload.WarehouseID, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.ParsePathUUID(payload.VariantID, "variant_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := enums.ParseAdjustmentType(strings.TrimSpace(payload.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid adjustment type"))
			return
		}

		row, err := svc.Adjust(r.Context(), inventory.AdjustInput{
			WarehouseID: warehouseID,
			VariantID:   variantID,
			Type:        movement,
			Quantity:    payload.Quantity,
			UserID:      middleware.UserIDFromContext(r.Context()),
			Reference:   payload.Reference,
			Note:        payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, row)
	}
}

type transferStockRequest struct {
	FromWarehouseID string  `json:"from_warehouse_id" validate:"required,uuid"`
	ToWarehouseID   string  `json:"to_warehouse_id" validate:"required,uuid"`
	VariantID       string  `json:"variant_id" validate:"required,uuid"`
	Quantity        int     `json:"quantity" validate:"required,min=1"`
	Note            *string `json:"note,omitempty"`
}

func TransferStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload transferStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fromID, err := validators.ParsePathUUID(payload.FromWarehouseID, "from_warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		toID, err := validators.ParsePathUUID(payload.ToWarehouseID, "to_warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.ParsePathUUID(payload.VariantID, "variant_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Transfer(r.Context(), inventory.TransferInput{
			FromWarehouseID: fromID,
			ToWarehouseID:   toID,
			VariantID:       variantID,
			Quantity:        payload.Quantity,
			UserID:          middleware.UserIDFromContext(r.Context()),
			Note:            payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "transferred"})
	}
}

func ListWarehouseStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouseID, err := validators.ParsePathUUID(chi.URLParam(r, "warehouseId"), "warehouseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, total, err := svc.ListStock(r.Context(), warehouseID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WritePaged(w, rows, params, total)
	}
}

func ListInventoryTransactions(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouseID, err := validators.ParseQueryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.ParseQueryUUID(r, "variant_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, total, err := svc.ListTransactions(r.Context(), inventory.TransactionFilters{
			WarehouseID: warehouseID,
			VariantID:   variantID,
		}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WritePaged(w, rows, params, total)
	}
}
