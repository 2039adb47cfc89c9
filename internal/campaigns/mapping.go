package campaigns

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-discounts/pkg/db/models"
	"github.com/angelmondragon/catalog-discounts/pkg/pricing"
)

// ToRule converts a stored campaign into the engine's view of it.
func ToRule(m models.DiscountCampaign) pricing.Campaign {
	categoryIDs := make([]uuid.UUID, 0, len(m.Categories))
	for _, c := range m.Categories {
		categoryIDs = append(categoryIDs, c.ID)
	}
	productIDs := make([]uuid.UUID, 0, len(m.Products))
	for _, p := range m.Products {
		productIDs = append(productIDs, p.ID)
	}
	return pricing.Campaign{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Value:       m.Value,
		Kind:        m.Kind,
		Scope:       m.Scope,
		Priority:    m.Priority,
		Active:      m.IsActive,
		Start:       m.StartDate,
		End:         m.ExpirationDate,
		CategoryIDs: categoryIDs,
		ProductIDs:  productIDs,
	}
}

// ToRules converts every campaign in order.
func ToRules(rows []models.DiscountCampaign) []pricing.Campaign {
	out := make([]pricing.Campaign, len(rows))
	for i := range rows {
		out[i] = ToRule(rows[i])
	}
	return out
}
