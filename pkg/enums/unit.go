package enums

import "fmt"

// Unit is the unit of measure a price tier is sold in.
type Unit string

const (
	UnitPiece    Unit = "piece"
	UnitDozen    Unit = "dozen"
	UnitBox      Unit = "box"
	UnitPackage  Unit = "package"
	UnitKilogram Unit = "kilogram"
	UnitMeter    Unit = "meter"
	UnitLiter    Unit = "liter"
)

var validUnits = []Unit{
	UnitPiece,
	UnitDozen,
	UnitBox,
	UnitPackage,
	UnitKilogram,
	UnitMeter,
	UnitLiter,
}

// String implements fmt.Stringer.
func (u Unit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known Unit.
func (u Unit) IsValid() bool {
	for _, candidate := range validUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnit converts raw input into a Unit.
func ParseUnit(value string) (Unit, error) {
	for _, candidate := range validUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit %q", value)
}
