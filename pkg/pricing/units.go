package pricing

import "github.com/angelmondragon/catalog-discounts/pkg/enums"

// UnitLabels renders unit names for a quantity. The plural table is copied on
// construction and never mutated afterwards.
type UnitLabels struct {
	plural map[enums.Unit]string
}

// NewUnitLabels builds a label table from the supplied plural forms.
func NewUnitLabels(plural map[enums.Unit]string) UnitLabels {
	table := make(map[enums.Unit]string, len(plural))
	for unit, label := range plural {
		table[unit] = label
	}
	return UnitLabels{plural: table}
}

// DefaultUnitLabels returns the English plural table for every catalog unit.
func DefaultUnitLabels() UnitLabels {
	return NewUnitLabels(map[enums.Unit]string{
		enums.UnitPiece:    "pieces",
		enums.UnitDozen:    "dozens",
		enums.UnitBox:      "boxes",
		enums.UnitPackage:  "packages",
		enums.UnitKilogram: "kilograms",
		enums.UnitMeter:    "meters",
		enums.UnitLiter:    "liters",
	})
}

// Label returns the singular unit for a quantity of exactly one and the
// plural otherwise. Units missing from the table get a trailing "s".
func (l UnitLabels) Label(unit enums.Unit, quantity int) string {
	if quantity == 1 {
		return string(unit)
	}
	if label, ok := l.plural[unit]; ok {
		return label
	}
	return string(unit) + "s"
}
