package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// PercentageOf returns base * pct / 100 without rounding.
func PercentageOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Shift(-2)
}

// ClampToPrice caps a discount amount at the price it discounts.
func ClampToPrice(amount, price decimal.Decimal) decimal.Decimal {
	return decimal.Min(amount, price)
}

// PercentageDisplay is the whole-number share of price taken by amount.
// Halves round to even. A zero price yields 0.
func PercentageDisplay(amount, price decimal.Decimal) int {
	if !price.IsPositive() {
		return 0
	}
	return int(amount.Mul(hundred).Div(price).RoundBank(0).IntPart())
}

// DiscountAmount applies a discount value of the given kind to price.
// Anything that is not a percentage is treated as a fixed amount.
func DiscountAmount(kind enums.DiscountKind, value, price decimal.Decimal) decimal.Decimal {
	if kind == enums.DiscountKindPercentage {
		return PercentageOf(price, value)
	}
	return ClampToPrice(value, price)
}
