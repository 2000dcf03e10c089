package duration

// Unit tags a magnitude with a physical or device-native time unit.
// No conversion factors exist between units at this layer.
type Unit string

const (
	// UnitDt is the device-native sample tick. Magnitudes must be integers.
	UnitDt Unit = "dt"

	UnitS  Unit = "s"
	UnitMs Unit = "ms"
	UnitUs Unit = "us"
	UnitNs Unit = "ns"
	UnitPs Unit = "ps"
)

// DefaultUnit is the unit assumed when none is given.
const DefaultUnit = UnitDt

// Units lists every valid unit in a fixed order.
var Units = []Unit{UnitDt, UnitS, UnitMs, UnitUs, UnitNs, UnitPs}

// ParseUnit converts a unit string. The empty string yields DefaultUnit.
func ParseUnit(s string) (Unit, error) {
	if s == "" {
		return DefaultUnit, nil
	}
	u := Unit(s)
	if !u.Valid() {
		return "", &InvalidDurationError{
			Rule:   RuleUnknownUnit,
			Unit:   u,
			Detail: "must be one of dt, s, ms, us, ns, ps",
		}
	}
	return u, nil
}

// Valid reports whether u is one of the known units.
func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// IsAbsolute reports whether u is a wall-clock unit (anything but dt).
func (u Unit) IsAbsolute() bool {
	return u.Valid() && u != UnitDt
}

func (u Unit) String() string {
	return string(u)
}
