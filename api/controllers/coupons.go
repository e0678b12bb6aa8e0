package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vancetran/medisupply-backend/api/middleware"
	"github.com/vancetran/medisupply-backend/api/responses"
	"github.com/vancetran/medisupply-backend/api/validators"
	"github.com/vancetran/medisupply-backend/internal/coupons"
	"github.com/vancetran/medisupply-backend/pkg/enums"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
	"github.com/vancetran/medisupply-backend/pkg/logger"
)

type createCouponRequest struct {
	Code             string     `json:"code" validate:"required"`
	Type             string     `json:"type" validate:"required,oneof=percentage fixed"`
	Value            string     `json:"value" validate:"required"`
	MinOrderAmount   *string    `json:"min_order_amount,omitempty"`
	UsageLimit       *int       `json:"usage_limit,omitempty" validate:"omitempty,min=1"`
	PerCustomerLimit *int       `json:"per_customer_limit,omitempty" validate:"omitempty,min=1"`
	StartsAt         *time.Time `json:"starts_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

func CreateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		couponType, err := enums.ParseCouponType(strings.TrimSpace(payload.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon type"))
			return
		}

		value, err := parseAmount(payload.Value, "value")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var minOrder *decimal.Decimal
		if payload.MinOrderAmount != nil {
			parsed, err := parseAmount(*payload.MinOrderAmount, "min_order_amount")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			minOrder = &parsed
		}

		coupon, err := svc.Create(r.Context(), coupons.CreateInput{
			Code:             strings.TrimSpace(payload.Code),
			Type:             couponType,
			Value:            value,
			MinOrderAmount:   minOrder,
			UsageLimit:       payload.UsageLimit,
			PerCustomerLimit: payload.PerCustomerLimit,
			StartsAt:         payload.StartsAt,
			ExpiresAt:        payload.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

func GetCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "couponId"), "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coupon)
	}
}

func ListCoupons(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, total, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WritePaged(w, list, params, total)
	}
}

type updateCouponRequest struct {
	Value            *string    `json:"value,omitempty"`
	MinOrderAmount   *string    `json:"min_order_amount,omitempty"`
	UsageLimit       *int       `json:"usage_limit,omitempty" validate:"omitempty,min=1"`
	PerCustomerLimit *int       `json:"per_customer_limit,omitempty" validate:"omitempty,min=1"`
	StartsAt         *time.Time `json:"starts_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	IsActive         *bool      `json:"is_active,omitempty"`
}

func UpdateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "couponId"), "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := coupons.UpdateInput{
			UsageLimit:       payload.UsageLimit,
			PerCustomerLimit: payload.PerCustomerLimit,
			StartsAt:         payload.StartsAt,
			ExpiresAt:        payload.ExpiresAt,
			IsActive:         payload.IsActive,
		}
		if payload.Value != nil {
			value, err := parseAmount(*payload.Value, "value")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Value = &value
		}
		if payload.MinOrderAmount != nil {
			minOrder, err := parseAmount(*payload.MinOrderAmount, "min_order_amount")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.MinOrderAmount = &minOrder
		}

		coupon, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coupon)
	}
}

func DeleteCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "couponId"), "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type validateCouponRequest struct {
	Code       string  `json:"code" validate:"required"`
	CustomerID *string `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	Subtotal   string  `json:"subtotal" validate:"required"`
}

// ValidateCoupon checks a code against an order subtotal and quotes the
// discount without consuming usage.
func ValidateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload validateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subtotal, err := parseAmount(payload.Subtotal, "subtotal")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID := middleware.CustomerIDFromContext(r.Context())
		if payload.CustomerID != nil {
			parsed, err := validators.ParseOptionalUUID(payload.CustomerID, "customer_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			customerID = parsed
		}
		if customerID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer_id is required"))
			return
		}

		coupon, err := svc.Validate(r.Context(), payload.Code, *customerID, subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"coupon":   coupon,
			"discount": coupons.ComputeDiscount(coupon, subtotal),
		})
	}
}
