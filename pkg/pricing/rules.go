package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

// Product is the slice of catalog data the cascade needs about a tier's owner.
type Product struct {
	ID            uuid.UUID
	Title         string
	CategoryID    *uuid.UUID
	CategoryTitle string
	// Discounts are evaluated in the order given.
	Discounts []ProductDiscount
}

// Tier is a priced quantity break of a product.
type Tier struct {
	ID            uuid.UUID
	Product       *Product
	Price         decimal.Decimal
	Quantity      int
	Unit          enums.Unit
	DiscountValue decimal.Decimal
	DiscountKind  enums.DiscountKind
	LeadTimeDays  int
}

// ProductDiscount is a discount attached to a single product.
type ProductDiscount struct {
	ID     uuid.UUID
	Value  decimal.Decimal
	Kind   enums.DiscountKind
	Window Window
}

// CategoryDiscount is a discount attached to every product of a category.
type CategoryDiscount struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Value      decimal.Decimal
	Kind       enums.DiscountKind
	Active     bool
	Window     Window
}

// Campaign is a time-boxed promotional rule with an explicit scope.
type Campaign struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Value       decimal.Decimal
	Kind        enums.DiscountKind
	Scope       enums.CampaignScope
	Priority    int
	Active      bool
	Start       time.Time
	End         time.Time
	CategoryIDs []uuid.UUID
	ProductIDs  []uuid.UUID
}

// ActiveAt reports whether the campaign is flagged active and now is within
// [Start, End].
func (c Campaign) ActiveAt(now time.Time) bool {
	return c.Active && !now.Before(c.Start) && !now.After(c.End)
}

// AppliesTo reports whether the campaign scope reaches the product.
func (c Campaign) AppliesTo(p *Product) bool {
	switch c.Scope {
	case enums.CampaignScopeGlobal:
		return true
	case enums.CampaignScopeCategory:
		if p == nil || p.CategoryID == nil {
			return false
		}
		return containsID(c.CategoryIDs, *p.CategoryID)
	case enums.CampaignScopeProducts:
		if p == nil {
			return false
		}
		return containsID(c.ProductIDs, p.ID)
	}
	return false
}

// Window exposes the campaign period as a Window.
func (c Campaign) Window() Window {
	start, end := c.Start, c.End
	return Window{Start: &start, End: &end}
}

// SelectCampaign picks the campaign that governs now: the highest priority
// among active ones, then the latest start, then the smallest id.
func SelectCampaign(campaigns []Campaign, now time.Time) (Campaign, bool) {
	var (
		best  Campaign
		found bool
	)
	for _, c := range campaigns {
		if !c.ActiveAt(now) {
			continue
		}
		if !found || outranks(c, best) {
			best = c
			found = true
		}
	}
	return best, found
}

func outranks(a, b Campaign) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.Start.Equal(b.Start) {
		return a.Start.After(b.Start)
	}
	return a.ID.String() < b.ID.String()
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Strategy is one level of the discount cascade.
type Strategy interface {
	Source() enums.DiscountSource
	TryResolve(tier Tier, now time.Time) (Resolution, bool)
}

// CampaignRule resolves the governing campaign. When that campaign does not
// reach the product the whole level is skipped; lower-priority campaigns are
// never consulted.
type CampaignRule struct {
	campaigns []Campaign
}

// NewCampaignRule builds the campaign level over a copy of campaigns.
func NewCampaignRule(campaigns []Campaign) *CampaignRule {
	return &CampaignRule{campaigns: append([]Campaign(nil), campaigns...)}
}

func (r *CampaignRule) Source() enums.DiscountSource { return enums.DiscountSourceCampaign }

func (r *CampaignRule) TryResolve(tier Tier, now time.Time) (Resolution, bool) {
	campaign, ok := SelectCampaign(r.campaigns, now)
	if !ok || !campaign.Value.IsPositive() || !campaign.AppliesTo(tier.Product) {
		return Resolution{}, false
	}
	amount := DiscountAmount(campaign.Kind, campaign.Value, tier.Price)
	end := campaign.End
	return newResolution(r.Source(), campaign.ID, amount, tier.Price, campaign.Name, &end), true
}

// CategoryRule resolves the first usable discount of the product's category.
type CategoryRule struct {
	byCategory map[uuid.UUID][]CategoryDiscount
}

// NewCategoryRule indexes discounts by category, keeping their relative order.
func NewCategoryRule(discounts []CategoryDiscount) *CategoryRule {
	byCategory := make(map[uuid.UUID][]CategoryDiscount)
	for _, d := range discounts {
		byCategory[d.CategoryID] = append(byCategory[d.CategoryID], d)
	}
	return &CategoryRule{byCategory: byCategory}
}

func (r *CategoryRule) Source() enums.DiscountSource { return enums.DiscountSourceCategory }

func (r *CategoryRule) TryResolve(tier Tier, now time.Time) (Resolution, bool) {
	p := tier.Product
	if p == nil || p.CategoryID == nil {
		return Resolution{}, false
	}
	for _, d := range r.byCategory[*p.CategoryID] {
		if !d.Active || !d.Value.IsPositive() || !d.Window.Contains(now) {
			continue
		}
		amount := DiscountAmount(d.Kind, d.Value, tier.Price)
		name := fmt.Sprintf("Discount on %s", p.CategoryTitle)
		return newResolution(r.Source(), d.ID, amount, tier.Price, name, d.Window.End), true
	}
	return Resolution{}, false
}

// ProductRule resolves the first usable discount attached to the product.
type ProductRule struct{}

func (ProductRule) Source() enums.DiscountSource { return enums.DiscountSourceProduct }

func (r ProductRule) TryResolve(tier Tier, now time.Time) (Resolution, bool) {
	p := tier.Product
	if p == nil {
		return Resolution{}, false
	}
	for _, d := range p.Discounts {
		if !d.Value.IsPositive() || !d.Window.Contains(now) {
			continue
		}
		amount := DiscountAmount(d.Kind, d.Value, tier.Price)
		name := fmt.Sprintf("Discount on %s", p.Title)
		return newResolution(r.Source(), d.ID, amount, tier.Price, name, d.Window.End), true
	}
	return Resolution{}, false
}

// TierRule resolves the discount stored inline on the tier.
type TierRule struct{}

func (TierRule) Source() enums.DiscountSource { return enums.DiscountSourcePrice }

func (r TierRule) TryResolve(tier Tier, _ time.Time) (Resolution, bool) {
	if !tier.DiscountValue.IsPositive() {
		return Resolution{}, false
	}
	amount := DiscountAmount(tier.DiscountKind, tier.DiscountValue, tier.Price)
	name := fmt.Sprintf("Quantity discount (%d+)", tier.Quantity)
	return newResolution(r.Source(), tier.ID, amount, tier.Price, name, nil), true
}
