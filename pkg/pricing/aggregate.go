package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

// Quote is one tier together with its resolution and derived prices.
type Quote struct {
	TierID       uuid.UUID
	Price        decimal.Decimal
	Quantity     int
	Unit         enums.Unit
	UnitLabel    string
	LeadTimeDays int
	Resolution   Resolution
	PriceNew     decimal.Decimal
	PriceOld     *decimal.Decimal
}

// HasDiscount reports whether the quote carries a discount.
func (q Quote) HasDiscount() bool {
	return q.Resolution.HasDiscount()
}

// Savings is the price reduction for this tier.
func (q Quote) Savings() decimal.Decimal {
	return q.Price.Sub(q.PriceNew)
}

// PriceRange summarises every tier of a product. Discount metadata is only
// populated when at least one tier is discounted.
type PriceRange struct {
	Min          decimal.Decimal `json:"min"`
	Max          decimal.Decimal `json:"max"`
	MinQuantity  int             `json:"min_quantity"`
	MinUnit      enums.Unit      `json:"min_unit"`
	MinUnitLabel string          `json:"min_unit_label"`
	MaxQuantity  int             `json:"max_quantity"`
	MaxUnit      enums.Unit      `json:"max_unit"`
	MaxUnitLabel string          `json:"max_unit_label"`

	MinDiscounted decimal.Decimal `json:"min_discounted"`
	MaxDiscounted decimal.Decimal `json:"max_discounted"`
	HasDiscount   bool            `json:"has_discount"`

	MaxDiscountPercentage *int             `json:"max_discount_percentage,omitempty"`
	MinDiscountPercentage *int             `json:"min_discount_percentage,omitempty"`
	MaxSavings            *decimal.Decimal `json:"max_savings,omitempty"`
	MinSavings            *decimal.Decimal `json:"min_savings,omitempty"`
	CampaignName          *string          `json:"campaign_name,omitempty"`
	DiscountExpiresAt     *time.Time       `json:"discount_expires_at,omitempty"`
}

// Aggregator turns per-tier resolutions into product-level summaries.
type Aggregator struct {
	resolver *Resolver
	labels   UnitLabels
}

// NewAggregator builds an aggregator on top of a resolver.
func NewAggregator(resolver *Resolver, labels UnitLabels) *Aggregator {
	return &Aggregator{resolver: resolver, labels: labels}
}

// Resolver exposes the underlying resolver.
func (a *Aggregator) Resolver() *Resolver {
	return a.resolver
}

// Quote resolves a single tier.
func (a *Aggregator) Quote(tier Tier, now time.Time) Quote {
	res := a.resolver.ResolveAt(tier, now)
	return Quote{
		TierID:       tier.ID,
		Price:        tier.Price,
		Quantity:     tier.Quantity,
		Unit:         tier.Unit,
		UnitLabel:    a.labels.Label(tier.Unit, tier.Quantity),
		LeadTimeDays: tier.LeadTimeDays,
		Resolution:   res,
		PriceNew:     res.PriceNew(tier.Price),
		PriceOld:     res.PriceOld(tier.Price),
	}
}

// Quotes resolves every tier in order.
func (a *Aggregator) Quotes(tiers []Tier, now time.Time) []Quote {
	quotes := make([]Quote, len(tiers))
	for i, tier := range tiers {
		quotes[i] = a.Quote(tier, now)
	}
	return quotes
}

// Aggregate summarises tiers at now. It returns nil for an empty tier list.
func (a *Aggregator) Aggregate(tiers []Tier, now time.Time) *PriceRange {
	if len(tiers) == 0 {
		return nil
	}
	return Summarize(a.Quotes(tiers, now))
}

// Summarize builds a PriceRange from already resolved quotes. Ties on the raw
// extremes go to the later quote.
func Summarize(quotes []Quote) *PriceRange {
	if len(quotes) == 0 {
		return nil
	}

	first := quotes[0]
	pr := &PriceRange{
		Min:           first.Price,
		Max:           first.Price,
		MinDiscounted: first.PriceNew,
		MaxDiscounted: first.PriceNew,
	}
	minQuote, maxQuote := first, first
	var firstDiscounted *Quote

	for i := range quotes {
		q := quotes[i]
		if q.Price.LessThanOrEqual(pr.Min) {
			pr.Min = q.Price
			minQuote = q
		}
		if q.Price.GreaterThanOrEqual(pr.Max) {
			pr.Max = q.Price
			maxQuote = q
		}
		if q.PriceNew.LessThan(pr.MinDiscounted) {
			pr.MinDiscounted = q.PriceNew
		}
		if q.PriceNew.GreaterThan(pr.MaxDiscounted) {
			pr.MaxDiscounted = q.PriceNew
		}
		if !q.HasDiscount() {
			continue
		}
		if firstDiscounted == nil {
			firstDiscounted = &quotes[i]
		}
		savings := q.Savings()
		if pr.MaxSavings == nil || savings.GreaterThan(*pr.MaxSavings) {
			pr.MaxSavings = &savings
		}
		if pr.MinSavings == nil || savings.LessThan(*pr.MinSavings) {
			pr.MinSavings = &savings
		}
	}

	pr.MinQuantity, pr.MinUnit, pr.MinUnitLabel = minQuote.Quantity, minQuote.Unit, minQuote.UnitLabel
	pr.MaxQuantity, pr.MaxUnit, pr.MaxUnitLabel = maxQuote.Quantity, maxQuote.Unit, maxQuote.UnitLabel

	if firstDiscounted == nil {
		return pr
	}
	pr.HasDiscount = true

	for _, q := range quotes {
		pct := q.Resolution.Percentage
		if pct == nil || !q.HasDiscount() {
			continue
		}
		if pr.MaxDiscountPercentage == nil || *pct > *pr.MaxDiscountPercentage {
			v := *pct
			pr.MaxDiscountPercentage = &v
		}
		if pr.MinDiscountPercentage == nil || *pct < *pr.MinDiscountPercentage {
			v := *pct
			pr.MinDiscountPercentage = &v
		}
	}

	pr.CampaignName = firstDiscounted.Resolution.Name
	pr.DiscountExpiresAt = firstDiscounted.Resolution.ExpiresAt
	return pr
}
