package catalog

import (
	"github.com/angelmondragon/catalog-discounts/pkg/db/models"
	"github.com/angelmondragon/catalog-discounts/pkg/pricing"
)

func toPricingProduct(m *models.Product) *pricing.Product {
	p := &pricing.Product{
		ID:         m.ID,
		Title:      m.Title,
		CategoryID: m.CategoryID,
		Discounts:  make([]pricing.ProductDiscount, 0, len(m.Discounts)),
	}
	if m.Category != nil {
		p.CategoryTitle = m.Category.Title
	}
	for _, d := range m.Discounts {
		p.Discounts = append(p.Discounts, pricing.ProductDiscount{
			ID:     d.ID,
			Value:  d.Value,
			Kind:   d.Kind,
			Window: pricing.Window{Start: d.StartDate, End: d.ExpirationDate},
		})
	}
	return p
}

func toPricingTiers(m *models.Product) []pricing.Tier {
	product := toPricingProduct(m)
	tiers := make([]pricing.Tier, 0, len(m.Tiers))
	for _, t := range m.Tiers {
		tiers = append(tiers, pricing.Tier{
			ID:            t.ID,
			Product:       product,
			Price:         t.Price,
			Quantity:      t.Quantity,
			Unit:          t.Unit,
			DiscountValue: t.DiscountValue,
			DiscountKind:  t.DiscountKind,
			LeadTimeDays:  t.LeadTimeDays,
		})
	}
	return tiers
}

func toCategoryDiscounts(rows []models.CategoryDiscount) []pricing.CategoryDiscount {
	out := make([]pricing.CategoryDiscount, 0, len(rows))
	for _, d := range rows {
		out = append(out, pricing.CategoryDiscount{
			ID:         d.ID,
			CategoryID: d.CategoryID,
			Name:       d.Name,
			Value:      d.Value,
			Kind:       d.Kind,
			Active:     d.IsActive,
			Window:     pricing.Window{Start: d.StartDate, End: d.ExpirationDate},
		})
	}
	return out
}

func productWindows(rows []models.ProductDiscount) []pricing.Window {
	out := make([]pricing.Window, 0, len(rows))
	for _, d := range rows {
		out = append(out, pricing.Window{Start: d.StartDate, End: d.ExpirationDate})
	}
	return out
}
