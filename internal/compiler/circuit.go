package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/abbycross/qiskit/internal/circuit"
	"github.com/abbycross/qiskit/internal/duration"
)

// Compiled is a named circuit from a CUE source.
type Compiled struct {
	Name    string
	Circuit *circuit.Circuit
}

// CompileFile reads and compiles every circuit in a CUE file.
func CompileFile(path string) ([]Compiled, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return CompileSource(path, string(src))
}

// CompileSource compiles the circuits declared under the top-level
// "circuit" struct, in declaration order.
func CompileSource(filename, src string) ([]Compiled, error) {
	ctx := cuecontext.New()
	return CompileValue(ctx.CompileString(src, cue.Filename(filename)))
}

// CompileValue compiles the circuits under "circuit" in an evaluated
// CUE value, such as a built package instance.
func CompileValue(v cue.Value) ([]Compiled, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	circuitsVal := v.LookupPath(cue.ParsePath("circuit"))
	if !circuitsVal.Exists() {
		return nil, &CompileError{Field: "circuit", Message: "no circuits declared", Pos: v.Pos()}
	}

	iter, err := circuitsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []Compiled
	for iter.Next() {
		c, err := CompileCircuit(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, Compiled{Name: iter.Label(), Circuit: c})
	}
	if len(out) == 0 {
		return nil, &CompileError{Field: "circuit", Message: "no circuits declared", Pos: circuitsVal.Pos()}
	}
	return out, nil
}

// CompileCircuit builds one circuit from its CUE struct:
//
//	{
//		qubits: 2
//		stretches: {a: "dt"}
//		ops: [
//			{gate: "h", qubits: [0]},
//			{delay: {value: 100, unit: "dt"}, qubits: [0]},
//			{delay: {sum: [{stretch: "a"}, {param: "t", unit: "ns"}]}},
//		]
//	}
//
// A delay without qubits covers every qubit.
func CompileCircuit(v cue.Value) (*circuit.Circuit, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	qubitsVal := v.LookupPath(cue.ParsePath("qubits"))
	if !qubitsVal.Exists() {
		return nil, &CompileError{Field: "qubits", Message: "qubits is required", Pos: v.Pos()}
	}
	n, err := qubitsVal.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if n < 1 {
		return nil, &CompileError{Field: "qubits", Message: fmt.Sprintf("qubits must be positive, got %d", n), Pos: qubitsVal.Pos()}
	}
	c := circuit.New(int(n))

	if err := parseStretches(v, c); err != nil {
		return nil, err
	}

	opsVal := v.LookupPath(cue.ParsePath("ops"))
	if !opsVal.Exists() {
		return c, nil
	}
	opIter, err := opsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; opIter.Next(); i++ {
		if err := parseOp(opIter.Value(), fmt.Sprintf("ops[%d]", i), c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// parseStretches declares each label of the optional stretches struct.
func parseStretches(v cue.Value, c *circuit.Circuit) error {
	stretchVal := v.LookupPath(cue.ParsePath("stretches"))
	if !stretchVal.Exists() {
		return nil
	}
	iter, err := stretchVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Label()
		unitStr, err := iter.Value().String()
		if err != nil {
			return formatCUEError(err)
		}
		unit, err := duration.ParseUnit(unitStr)
		if err != nil {
			return wrapError("stretches."+name, iter.Value(), err)
		}
		if _, err := c.AddStretch(name, unit); err != nil {
			return wrapError("stretches."+name, iter.Value(), err)
		}
	}
	return nil
}

func parseOp(v cue.Value, field string, c *circuit.Circuit) error {
	qubits, err := parseQubits(v, field)
	if err != nil {
		return err
	}

	if gateVal := v.LookupPath(cue.ParsePath("gate")); gateVal.Exists() {
		name, err := gateVal.String()
		if err != nil {
			return formatCUEError(err)
		}
		gate, err := circuit.StandardGate(name)
		if err != nil {
			return wrapError(field+".gate", gateVal, err)
		}
		if err := c.Append(gate, qubits...); err != nil {
			return wrapError(field, v, err)
		}
		return nil
	}

	if delayVal := v.LookupPath(cue.ParsePath("delay")); delayVal.Exists() {
		d, err := parseTerm(delayVal, field+".delay", c, map[string]duration.Unit{})
		if err != nil {
			return err
		}
		if err := c.Delay(d, qubits...); err != nil {
			return wrapError(field, v, err)
		}
		return nil
	}

	return &CompileError{Field: field, Message: "op must have a gate or a delay", Pos: v.Pos()}
}

func parseQubits(v cue.Value, field string) ([]int, error) {
	qVal := v.LookupPath(cue.ParsePath("qubits"))
	if !qVal.Exists() {
		return nil, nil
	}
	iter, err := qVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var qubits []int
	for iter.Next() {
		q, err := iter.Value().Int64()
		if err != nil {
			return nil, wrapError(field+".qubits", iter.Value(), err)
		}
		qubits = append(qubits, int(q))
	}
	return qubits, nil
}

// parseTerm reads one duration term. Exactly one of value, param,
// stretch, sum or scale selects the variant. params collects the unit of
// every parameter seen in the enclosing delay, since the circuit only
// learns them once the delay is appended.
func parseTerm(v cue.Value, field string, c *circuit.Circuit, params map[string]duration.Unit) (duration.Value, error) {
	if val := v.LookupPath(cue.ParsePath("value")); val.Exists() {
		m, err := number(val)
		if err != nil {
			return nil, wrapError(field+".value", val, err)
		}
		unit, err := parseUnitField(v, field)
		if err != nil {
			return nil, err
		}
		lit, err := duration.NewLiteral(m, unit)
		if err != nil {
			return nil, wrapError(field, v, err)
		}
		return lit, nil
	}

	if val := v.LookupPath(cue.ParsePath("param")); val.Exists() {
		name, err := val.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		unit, err := parseUnitField(v, field)
		if err != nil {
			return nil, err
		}
		sym := duration.NewSymbol(name, unit)
		if e, ok := c.Symbol(sym.Name()); ok {
			if e.Kind == circuit.KindStretch {
				return nil, &CompileError{Field: field + ".param", Message: fmt.Sprintf("%q is a stretch, not a parameter", name), Pos: val.Pos()}
			}
			if e.Unit != unit {
				return nil, &CompileError{Field: field + ".unit", Message: fmt.Sprintf("parameter %q already has unit %s", name, e.Unit), Pos: v.Pos()}
			}
		}
		if prev, ok := params[sym.Name()]; ok && prev != unit {
			return nil, &CompileError{Field: field + ".unit", Message: fmt.Sprintf("parameter %q already has unit %s", name, prev), Pos: v.Pos()}
		}
		params[sym.Name()] = unit
		return sym, nil
	}

	if val := v.LookupPath(cue.ParsePath("stretch")); val.Exists() {
		name, err := val.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		e, ok := c.Symbol(name)
		if !ok || e.Kind != circuit.KindStretch {
			return nil, &CompileError{Field: field + ".stretch", Message: fmt.Sprintf("stretch %q is not declared", name), Pos: val.Pos()}
		}
		return duration.NewSymbol(e.Name, e.Unit), nil
	}

	if val := v.LookupPath(cue.ParsePath("sum")); val.Exists() {
		iter, err := val.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var terms []duration.Value
		for i := 0; iter.Next(); i++ {
			term, err := parseTerm(iter.Value(), fmt.Sprintf("%s.sum[%d]", field, i), c, params)
			if err != nil {
				return nil, err
			}
			terms = append(terms, term)
		}
		if len(terms) == 0 {
			return nil, &CompileError{Field: field + ".sum", Message: "sum needs at least one term", Pos: val.Pos()}
		}
		return duration.Add(terms[0], terms[1:]...), nil
	}

	if val := v.LookupPath(cue.ParsePath("scale")); val.Exists() {
		factor, err := number(val)
		if err != nil {
			return nil, wrapError(field+".scale", val, err)
		}
		ofVal := v.LookupPath(cue.ParsePath("of"))
		if !ofVal.Exists() {
			return nil, &CompileError{Field: field + ".of", Message: "scale needs an 'of' term", Pos: v.Pos()}
		}
		term, err := parseTerm(ofVal, field+".of", c, params)
		if err != nil {
			return nil, err
		}
		scaled, err := duration.NewScale(factor, term)
		if err != nil {
			return nil, wrapError(field+".scale", val, err)
		}
		return scaled, nil
	}

	return nil, &CompileError{
		Field:   field,
		Message: "duration must have one of: value, param, stretch, sum, scale",
		Pos:     v.Pos(),
	}
}

func parseUnitField(v cue.Value, field string) (duration.Unit, error) {
	unitVal := v.LookupPath(cue.ParsePath("unit"))
	if !unitVal.Exists() {
		return duration.DefaultUnit, nil
	}
	s, err := unitVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	unit, err := duration.ParseUnit(s)
	if err != nil {
		return "", wrapError(field+".unit", unitVal, err)
	}
	return unit, nil
}

// number reads an int or float CUE value.
func number(v cue.Value) (float64, error) {
	if v.IncompleteKind() == cue.IntKind {
		n, err := v.Int64()
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
	return v.Float64()
}
