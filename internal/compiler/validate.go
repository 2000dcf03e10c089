package compiler

import (
	"fmt"

	"github.com/abbycross/qiskit/internal/circuit"
	"github.com/abbycross/qiskit/internal/duration"
)

// Lint codes (W100-W199). A circuit with findings still compiles.
const (
	WarnEmptyCircuit  = "W101" // circuit has no instructions
	WarnUnusedStretch = "W102" // stretch declared but never referenced
	WarnMixedUnits    = "W103" // expression mixes dt with absolute units
	WarnZeroScale     = "W104" // scale factor of zero
)

// ValidationError is a lint finding on a compiled circuit.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate lints a compiled circuit.
// Returns all findings (does not fail-fast).
func Validate(c *circuit.Circuit) []ValidationError {
	var errs []ValidationError

	if c.Len() == 0 {
		errs = append(errs, ValidationError{
			Field:   "ops",
			Message: "circuit has no instructions",
			Code:    WarnEmptyCircuit,
		})
	}

	used := make(map[string]bool)
	for i, inst := range c.Data() {
		d, ok := inst.Operation.(*circuit.Delay)
		if !ok {
			continue
		}
		field := fmt.Sprintf("ops[%d].delay", i)
		for _, name := range d.FreeSymbols() {
			used[name] = true
		}
		errs = append(errs, lintDuration(d.Duration(), field)...)
	}

	for _, name := range c.Stretches() {
		if !used[name] {
			errs = append(errs, ValidationError{
				Field:   "stretches." + name,
				Message: fmt.Sprintf("stretch %q is never referenced", name),
				Code:    WarnUnusedStretch,
			})
		}
	}

	return errs
}

func lintDuration(v duration.Value, field string) []ValidationError {
	var errs []ValidationError
	var sawDt, sawAbsolute bool

	duration.Walk(v, func(node duration.Value) bool {
		switch n := node.(type) {
		case duration.Expression:
			if n.Op() == duration.OpScale && n.Factor() == 0 {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%s scales by zero", n),
					Code:    WarnZeroScale,
				})
			}
		default:
			if node.Unit().IsAbsolute() {
				sawAbsolute = true
			} else {
				sawDt = true
			}
		}
		return true
	})

	if sawDt && sawAbsolute {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s mixes dt with absolute units", v),
			Code:    WarnMixedUnits,
		})
	}
	return errs
}
