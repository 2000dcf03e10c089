package duration

import (
	"errors"
	"fmt"
)

// ErrInvalidDuration is matched by errors.Is for every InvalidDurationError.
var ErrInvalidDuration = errors.New("invalid duration")

// Rule names the invariant an InvalidDurationError violated.
type Rule string

const (
	// RuleNegative: magnitude below zero.
	RuleNegative Rule = "NEGATIVE_MAGNITUDE"

	// RuleNonInteger: dt magnitude with a fractional part.
	RuleNonInteger Rule = "NON_INTEGER_DT"

	// RuleNonReal: substitution that is not a plain real number.
	RuleNonReal Rule = "NON_REAL_VALUE"

	// RuleNonFinite: NaN or infinite magnitude.
	RuleNonFinite Rule = "NON_FINITE_MAGNITUDE"

	// RuleUnknownUnit: unit string outside the known set.
	RuleUnknownUnit Rule = "UNKNOWN_UNIT"
)

// InvalidDurationError reports a value rejected at construction or binding.
type InvalidDurationError struct {
	// Rule identifies the violated invariant.
	Rule Rule

	// Value is the offending input (magnitude or substitution).
	Value any

	// Unit is the unit the value was checked against.
	Unit Unit

	// Symbol is set when the failure came from binding a named symbol.
	Symbol string

	// Detail is an optional human-readable addition.
	Detail string
}

// Error implements the error interface.
func (e *InvalidDurationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Rule, e.describe())
	if e.Symbol != "" {
		msg += fmt.Sprintf(" (symbol=%s)", e.Symbol)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *InvalidDurationError) describe() string {
	switch e.Rule {
	case RuleNegative:
		return fmt.Sprintf("duration %v%s is negative", e.Value, e.Unit)
	case RuleNonInteger:
		return fmt.Sprintf("duration %v must be an integer for unit dt", e.Value)
	case RuleNonReal:
		return fmt.Sprintf("substitution %v (%T) is not a real number", e.Value, e.Value)
	case RuleNonFinite:
		return fmt.Sprintf("duration %v%s is not finite", e.Value, e.Unit)
	case RuleUnknownUnit:
		return fmt.Sprintf("unknown unit %q", string(e.Unit))
	default:
		return "invalid duration"
	}
}

// Is makes errors.Is(err, ErrInvalidDuration) succeed.
func (e *InvalidDurationError) Is(target error) bool {
	return target == ErrInvalidDuration
}

// IsInvalidDuration returns true if err wraps an InvalidDurationError.
func IsInvalidDuration(err error) bool {
	var ide *InvalidDurationError
	return errors.As(err, &ide)
}

// RuleOf extracts the violated rule, or "" if err is not an InvalidDurationError.
func RuleOf(err error) Rule {
	var ide *InvalidDurationError
	if errors.As(err, &ide) {
		return ide.Rule
	}
	return ""
}
