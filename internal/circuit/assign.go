package circuit

import (
	"fmt"
	"slices"

	"github.com/abbycross/qiskit/internal/duration"
)

// AssignParameters returns a copy of c with b applied to every
// parameterized instruction. c is never modified.
func (c *Circuit) AssignParameters(b duration.Bindings) (*Circuit, error) {
	out := c.DeepCopy()
	if err := out.AssignParametersInPlace(b); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignParametersInPlace binds symbols across the whole circuit.
//
// Every name in b must be a declared stretch or parameter; otherwise
// ErrUnknownParameter is returned. The same mapping is handed to each
// parameterized instruction, so every occurrence of a symbol resolves
// together. Duration validation errors are returned unchanged (wrapped
// with the instruction index). On any error c is left exactly as it was.
// Bound names are removed from the symbol table.
func (c *Circuit) AssignParametersInPlace(b duration.Bindings) error {
	names := b.Names()
	for _, name := range names {
		if _, ok := c.symbols[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	data := make([]Instruction, len(c.data))
	for i, inst := range c.data {
		data[i] = inst
		p, ok := inst.Operation.(Parameterized)
		if !ok || !sharesAny(p.FreeSymbols(), names) {
			continue
		}
		bound, err := p.BindParameters(b)
		if err != nil {
			return fmt.Errorf("instruction %d (%s): %w", i, inst.Operation.Name(), err)
		}
		data[i] = Instruction{Operation: bound, Qubits: inst.Qubits}
	}

	c.data = data
	for _, name := range names {
		delete(c.symbols, name)
	}
	return nil
}

// AssignParameterValues binds values positionally, in Parameters() order.
// Stretches are not included; bind them by name.
func (c *Circuit) AssignParameterValues(values []any) (*Circuit, error) {
	params := c.Parameters()
	if len(values) != len(params) {
		return nil, fmt.Errorf("%w: circuit has %d parameter(s), got %d value(s)", ErrValueCount, len(params), len(values))
	}
	b := make(duration.Bindings, len(params))
	for i, name := range params {
		b[name] = values[i]
	}
	return c.AssignParameters(b)
}

func sharesAny(free, names []string) bool {
	for _, n := range free {
		if slices.Contains(names, n) {
			return true
		}
	}
	return false
}
