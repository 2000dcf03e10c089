package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abbycross/qiskit/internal/circuit"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the final circuit
// and returns the failure messages. start is the compiled circuit.
func EvaluateAssertions(final, start *circuit.Circuit, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(final, start, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(final, start *circuit.Circuit, a Assertion) error {
	switch a.Type {
	case AssertResolved, AssertEqualToStart:
		if a.Value == nil {
			return fmt.Errorf("value is required for %s", a.Type)
		}
	}

	switch a.Type {
	case AssertResolved:
		return assertFlag(a.Type, *a.Value, final.IsResolved())
	case AssertEqualToStart:
		return assertFlag(a.Type, *a.Value, final.Equal(start))
	case AssertDurations:
		return assertDurations(final, a)
	case AssertParameters:
		return assertParameters(final, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertFlag(kind string, want, got bool) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%t", want),
		Actual:   fmt.Sprintf("%t", got),
	}
}

// assertDurations compares delay durations in instruction order.
func assertDurations(c *circuit.Circuit, a Assertion) error {
	got := delayDurations(c)
	if slices.Equal(got, a.Durations) {
		return nil
	}
	return &AssertionError{
		Type:     AssertDurations,
		Expected: fmt.Sprintf("%q", a.Durations),
		Actual:   fmt.Sprintf("%q", got),
	}
}

// assertParameters compares the remaining symbol names. Lists left nil
// in the assertion are not checked.
func assertParameters(c *circuit.Circuit, a Assertion) error {
	if a.Parameters != nil {
		got := orEmpty(c.Parameters())
		if !slices.Equal(got, a.Parameters) {
			return &AssertionError{
				Type:     AssertParameters,
				Expected: fmt.Sprintf("parameters %q", a.Parameters),
				Actual:   fmt.Sprintf("parameters %q", got),
			}
		}
	}
	if a.Stretches != nil {
		got := orEmpty(c.Stretches())
		if !slices.Equal(got, a.Stretches) {
			return &AssertionError{
				Type:     AssertParameters,
				Expected: fmt.Sprintf("stretches %q", a.Stretches),
				Actual:   fmt.Sprintf("stretches %q", got),
			}
		}
	}
	return nil
}
