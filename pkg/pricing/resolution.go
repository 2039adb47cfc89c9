package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

// OriginRef identifies the rule that produced a resolution.
type OriginRef struct {
	Source enums.DiscountSource `json:"source"`
	ID     uuid.UUID            `json:"id"`
}

// Resolution is the single winning discount outcome for one tier at one instant.
type Resolution struct {
	Amount     decimal.Decimal      `json:"discount_amount"`
	Percentage *int                 `json:"discount_percentage"`
	Source     enums.DiscountSource `json:"discount_source"`
	Name       *string              `json:"discount_name"`
	ExpiresAt  *time.Time           `json:"expires_at"`
	Origin     *OriginRef           `json:"origin_ref"`
}

// NoDiscount is the terminal outcome of the cascade.
func NoDiscount() Resolution {
	return Resolution{
		Amount: decimal.Zero,
		Source: enums.DiscountSourceNone,
	}
}

func newResolution(source enums.DiscountSource, originID uuid.UUID, amount, price decimal.Decimal, name string, expiresAt *time.Time) Resolution {
	pct := PercentageDisplay(amount, price)
	res := Resolution{
		Amount:     amount,
		Percentage: &pct,
		Source:     source,
		Name:       &name,
		Origin:     &OriginRef{Source: source, ID: originID},
	}
	if expiresAt != nil {
		exp := *expiresAt
		res.ExpiresAt = &exp
	}
	return res
}

// HasDiscount reports whether the resolution lowers the price.
func (r Resolution) HasDiscount() bool {
	return r.Amount.IsPositive()
}

// PriceNew is the price after the discount.
func (r Resolution) PriceNew(price decimal.Decimal) decimal.Decimal {
	return price.Sub(r.Amount)
}

// PriceOld is the crossed-out price, present only when a discount applies.
func (r Resolution) PriceOld(price decimal.Decimal) *decimal.Decimal {
	if !r.HasDiscount() {
		return nil
	}
	p := price
	return &p
}
