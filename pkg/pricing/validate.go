package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

var (
	ErrNonPositiveValue   = errors.New("discount value must be positive")
	ErrPercentageTooLarge = errors.New("percentage discount cannot exceed 100")
	ErrUnknownKind        = errors.New("unknown discount kind")
	ErrWindowOrder        = errors.New("expiration_date must be after start_date")
)

// ValidateAmount checks a discount before it is stored. The resolver itself
// tolerates any value; this guards operator input.
func ValidateAmount(kind enums.DiscountKind, value decimal.Decimal) error {
	if !kind.IsValid() {
		return ErrUnknownKind
	}
	if !value.IsPositive() {
		return ErrNonPositiveValue
	}
	if kind == enums.DiscountKindPercentage && value.GreaterThan(hundred) {
		return ErrPercentageTooLarge
	}
	return nil
}

// ValidateWindow requires the end to fall strictly after the start when both
// legs are present.
func ValidateWindow(start, end *time.Time) error {
	if start == nil || end == nil {
		return nil
	}
	if !end.After(*start) {
		return ErrWindowOrder
	}
	return nil
}
