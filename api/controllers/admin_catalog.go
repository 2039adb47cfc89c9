package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/api/responses"
	"github.com/angelmondragon/catalog-discounts/api/validators"
	"github.com/angelmondragon/catalog-discounts/internal/catalog"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-discounts/pkg/errors"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
)

type tierRequest struct {
	Price          decimal.Decimal `json:"price" validate:"dnonneg"`
	Quantity       int             `json:"quantity" validate:"required,min=1"`
	Unit           string          `json:"unit" validate:"omitempty,oneof=piece dozen box package kilogram meter liter"`
	Discount       decimal.Decimal `json:"discount" validate:"dnonneg"`
	DiscountType   string          `json:"discount_type" validate:"omitempty,oneof=percentage fixed_amount"`
	ProductionDays int             `json:"production_days" validate:"min=0"`
}

func (r tierRequest) toInput() catalog.TierInput {
	return catalog.TierInput{
		Price:         r.Price,
		Quantity:      r.Quantity,
		Unit:          enums.Unit(r.Unit),
		DiscountValue: r.Discount,
		DiscountKind:  enums.DiscountKind(r.DiscountType),
		LeadTimeDays:  r.ProductionDays,
	}
}

type productDiscountRequest struct {
	Discount       decimal.Decimal `json:"discount" validate:"dpos"`
	DiscountType   string          `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
}

type categoryDiscountRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Discount       decimal.Decimal `json:"discount" validate:"dpos"`
	DiscountType   string          `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	IsActive       *bool           `json:"is_active,omitempty"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
}

func AdminCreateTier(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog admin service unavailable"))
			return
		}
		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload tierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.CreateTier(r.Context(), productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tier)
	}
}

func AdminUpdateTier(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog admin service unavailable"))
			return
		}
		tierID, err := parseUUIDParam(r, "tierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload tierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.UpdateTier(r.Context(), tierID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tier)
	}
}

func AdminDeleteTier(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog admin service unavailable"))
			return
		}
		tierID, err := parseUUIDParam(r, "tierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteTier(r.Context(), tierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deletedPayload(tierID))
	}
}

func AdminCreateProductDiscount(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog admin service unavailable"))
			return
		}
		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload productDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := svc.CreateProductDiscount(r.Context(), productID, catalog.ProductDiscountInput{
			Value:          payload.Discount,
			Kind:           enums.DiscountKind(payload.DiscountType),
			StartDate:      payload.StartDate,
			ExpirationDate: payload.ExpirationDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, discount)
	}
}

func AdminDeleteProductDiscount(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog admin service unavailable"))
			return
		}
		id, err := parseUUIDParam(r, "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProductDiscount(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deletedPayload(id))
	}
}

func AdminCreateCategoryDiscount(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog admin service unavailable"))
			return
		}
		categoryID, err := parseUUIDParam(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload categoryDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active := true
		if payload.IsActive != nil {
			active = *payload.IsActive
		}

		discount, err := svc.CreateCategoryDiscount(r.Context(), categoryID, catalog.CategoryDiscountInput{
			Name:           strings.TrimSpace(payload.Name),
			Value:          payload.Discount,
			Kind:           enums.DiscountKind(payload.DiscountType),
			IsActive:       active,
			StartDate:      payload.StartDate,
			ExpirationDate: payload.ExpirationDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, discount)
	}
}

func AdminDeleteCategoryDiscount(svc catalog.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog admin service unavailable"))
			return
		}
		id, err := parseUUIDParam(r, "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteCategoryDiscount(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deletedPayload(id))
	}
}
