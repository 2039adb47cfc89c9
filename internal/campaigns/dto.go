package campaigns

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/pkg/db/models"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

// CampaignDTO is the public shape of a campaign.
type CampaignDTO struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	Code           string              `json:"code"`
	Description    *string             `json:"description,omitempty"`
	Scope          enums.CampaignScope `json:"campaign_type"`
	Value          decimal.Decimal     `json:"discount"`
	Kind           enums.DiscountKind  `json:"discount_type"`
	StartDate      time.Time           `json:"start_date"`
	ExpirationDate time.Time           `json:"expiration_date"`
	IsActive       bool                `json:"is_active"`
	Priority       int                 `json:"priority"`
}

// AdminCampaignDTO adds the scope membership shown to operators.
type AdminCampaignDTO struct {
	CampaignDTO
	CategoryIDs []uuid.UUID `json:"category_ids"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewCampaignDTO maps a stored campaign to its public shape.
func NewCampaignDTO(m *models.DiscountCampaign) CampaignDTO {
	return CampaignDTO{
		ID:             m.ID,
		Name:           m.Name,
		Code:           m.Code,
		Description:    m.Description,
		Scope:          m.Scope,
		Value:          m.Value,
		Kind:           m.Kind,
		StartDate:      m.StartDate,
		ExpirationDate: m.ExpirationDate,
		IsActive:       m.IsActive,
		Priority:       m.Priority,
	}
}

// NewAdminCampaignDTO maps a stored campaign for the admin API.
func NewAdminCampaignDTO(m *models.DiscountCampaign) *AdminCampaignDTO {
	rule := ToRule(*m)
	return &AdminCampaignDTO{
		CampaignDTO: NewCampaignDTO(m),
		CategoryIDs: rule.CategoryIDs,
		ProductIDs:  rule.ProductIDs,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
