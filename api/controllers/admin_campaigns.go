package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/api/responses"
	"github.com/angelmondragon/catalog-discounts/api/validators"
	"github.com/angelmondragon/catalog-discounts/internal/campaigns"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-discounts/pkg/errors"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
)

type campaignRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Code           string          `json:"code" validate:"required,max=100,slug"`
	Description    *string         `json:"description,omitempty"`
	Discount       decimal.Decimal `json:"discount" validate:"dpos"`
	DiscountType   string          `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	CampaignType   string          `json:"campaign_type" validate:"required,oneof=global category products"`
	StartDate      time.Time       `json:"start_date" validate:"required"`
	ExpirationDate time.Time       `json:"expiration_date" validate:"required"`
	Priority       int             `json:"priority"`
	IsActive       *bool           `json:"is_active,omitempty"`
	CategoryIDs    []uuid.UUID     `json:"category_ids,omitempty"`
	ProductIDs     []uuid.UUID     `json:"product_ids,omitempty"`
}

func (r campaignRequest) toInput() (campaigns.CampaignInput, error) {
	kind, err := enums.ParseDiscountKind(r.DiscountType)
	if err != nil {
		return campaigns.CampaignInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount_type")
	}
	scope, err := enums.ParseCampaignScope(r.CampaignType)
	if err != nil {
		return campaigns.CampaignInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid campaign_type")
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return campaigns.CampaignInput{
		Name:           strings.TrimSpace(r.Name),
		Code:           strings.TrimSpace(r.Code),
		Description:    r.Description,
		Value:          r.Discount,
		Kind:           kind,
		Scope:          scope,
		StartDate:      r.StartDate,
		ExpirationDate: r.ExpirationDate,
		Priority:       r.Priority,
		IsActive:       active,
		CategoryIDs:    r.CategoryIDs,
		ProductIDs:     r.ProductIDs,
	}, nil
}

func AdminListCampaigns(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "campaign service unavailable"))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminGetCampaign(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "campaign service unavailable"))
			return
		}
		id, err := parseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		campaign, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, campaign)
	}
}

func AdminCreateCampaign(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "campaign service unavailable"))
			return
		}

		var payload campaignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		campaign, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, campaign)
	}
}

func AdminUpdateCampaign(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "campaign service unavailable"))
			return
		}
		id, err := parseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload campaignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		campaign, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, campaign)
	}
}

func AdminDeleteCampaign(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "campaign service unavailable"))
			return
		}
		id, err := parseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deletedPayload(id))
	}
}

func deletedPayload(id uuid.UUID) map[string]any {
	return map[string]any{"id": id, "deleted": true}
}
