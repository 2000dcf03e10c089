package duration

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface over the duration variants.
// Only Literal, Symbol, and Expression implement it.
type Value interface {
	// Unit returns the declared unit. For an Expression this is the unit of
	// the first leaf in pre-order; it is advisory and plays no part in Equal.
	Unit() Unit

	// IsResolved reports whether the value contains no Symbol leaves.
	IsResolved() bool

	// FreeSymbols returns the distinct symbol names, sorted by CompareNames.
	FreeSymbols() []string

	// Bind substitutes numbers for named symbols. See the package-level Bind.
	Bind(b Bindings) (Value, error)

	// Equal reports unit-literal structural equality. See the package-level Equal.
	Equal(other Value) bool

	String() string

	durationValue() // Sealed
}

// Literal is a concrete magnitude and unit.
// The zero Literal is 0dt.
type Literal struct {
	magnitude float64
	unit      Unit
}

func (Literal) durationValue() {}

// NewLiteral validates and builds a Literal.
//
// Fails with an InvalidDurationError when the unit is unknown, the
// magnitude is NaN or infinite, negative, or fractional under dt.
func NewLiteral(magnitude float64, unit Unit) (Literal, error) {
	if unit == "" {
		unit = DefaultUnit
	}
	if !unit.Valid() {
		return Literal{}, &InvalidDurationError{Rule: RuleUnknownUnit, Value: magnitude, Unit: unit}
	}
	if math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return Literal{}, &InvalidDurationError{Rule: RuleNonFinite, Value: magnitude, Unit: unit}
	}
	if magnitude < 0 {
		return Literal{}, &InvalidDurationError{Rule: RuleNegative, Value: magnitude, Unit: unit}
	}
	if unit == UnitDt && magnitude != math.Trunc(magnitude) {
		return Literal{}, &InvalidDurationError{Rule: RuleNonInteger, Value: magnitude, Unit: unit}
	}
	if magnitude == 0 {
		magnitude = 0 // drop negative zero
	}
	return Literal{magnitude: magnitude, unit: unit}, nil
}

// MustLiteral is like NewLiteral but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustLiteral(magnitude float64, unit Unit) Literal {
	l, err := NewLiteral(magnitude, unit)
	if err != nil {
		panic(err)
	}
	return l
}

// Dt returns a tick-count literal. It cannot fail.
func Dt(ticks uint64) Literal {
	return Literal{magnitude: float64(ticks), unit: UnitDt}
}

// Magnitude returns the numeric part.
func (l Literal) Magnitude() float64 {
	return l.magnitude
}

func (l Literal) Unit() Unit {
	if l.unit == "" {
		return DefaultUnit
	}
	return l.unit
}

func (Literal) IsResolved() bool { return true }

func (Literal) FreeSymbols() []string { return nil }

func (l Literal) Bind(b Bindings) (Value, error) { return Bind(l, b) }

func (l Literal) Equal(other Value) bool { return Equal(l, other) }

func (l Literal) String() string {
	return formatMagnitude(l.magnitude) + string(l.Unit())
}

// Symbol is a named placeholder for a future magnitude.
// Two symbols are the same placeholder iff name and unit match.
type Symbol struct {
	name string
	unit Unit
}

func (Symbol) durationValue() {}

// NewSymbol builds a placeholder. The name is NFC-normalized so that
// canonically equivalent spellings denote the same symbol. An empty unit
// means DefaultUnit.
func NewSymbol(name string, unit Unit) Symbol {
	return Symbol{name: norm.NFC.String(name), unit: unit}
}

// SymbolVector returns n symbols named name[0] .. name[n-1].
func SymbolVector(name string, n int, unit Unit) []Symbol {
	out := make([]Symbol, n)
	for i := range out {
		out[i] = NewSymbol(fmt.Sprintf("%s[%d]", name, i), unit)
	}
	return out
}

// Name returns the symbol name.
func (s Symbol) Name() string {
	return s.name
}

func (s Symbol) Unit() Unit {
	if s.unit == "" {
		return DefaultUnit
	}
	return s.unit
}

func (Symbol) IsResolved() bool { return false }

func (s Symbol) FreeSymbols() []string { return []string{s.name} }

func (s Symbol) Bind(b Bindings) (Value, error) { return Bind(s, b) }

func (s Symbol) Equal(other Value) bool { return Equal(s, other) }

func (s Symbol) String() string {
	return s.name + ":" + string(s.Unit())
}

// Op is an Expression combinator.
type Op string

const (
	// OpAdd sums its operands.
	OpAdd Op = "add"

	// OpScale multiplies its single operand by Factor.
	OpScale Op = "scale"
)

// Expression combines other values without evaluating them.
// It is compared and bound structurally; no simplification happens.
type Expression struct {
	op       Op
	factor   float64
	operands []Value
}

func (Expression) durationValue() {}

// Add builds the sum of one or more values. Operand units need not agree.
func Add(first Value, rest ...Value) Expression {
	operands := make([]Value, 0, 1+len(rest))
	operands = append(operands, first)
	operands = append(operands, rest...)
	return Expression{op: OpAdd, factor: 1, operands: operands}
}

// NewScale builds factor * v. Negative factors are allowed; the sign is
// only checked when something downstream evaluates the expression. A NaN
// or infinite factor fails with RuleNonFinite.
func NewScale(factor float64, v Value) (Expression, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		unit := DefaultUnit
		if v != nil {
			unit = v.Unit()
		}
		return Expression{}, &InvalidDurationError{Rule: RuleNonFinite, Value: factor, Unit: unit, Detail: "scale factor"}
	}
	return Expression{op: OpScale, factor: factor, operands: []Value{v}}, nil
}

// Scale is like NewScale but panics on a NaN or infinite factor.
func Scale(factor float64, v Value) Expression {
	e, err := NewScale(factor, v)
	if err != nil {
		panic(err)
	}
	return e
}

// Op returns the combinator.
func (e Expression) Op() Op {
	return e.op
}

// Factor returns the scale factor (1 for sums).
func (e Expression) Factor() float64 {
	return e.factor
}

// Operands returns a copy of the operand list.
func (e Expression) Operands() []Value {
	out := make([]Value, len(e.operands))
	copy(out, e.operands)
	return out
}

func (e Expression) Unit() Unit {
	var found Unit
	Walk(e, func(v Value) bool {
		switch leaf := v.(type) {
		case Literal:
			found = leaf.Unit()
			return false
		case Symbol:
			found = leaf.Unit()
			return false
		}
		return true
	})
	if found == "" {
		return DefaultUnit
	}
	return found
}

func (e Expression) IsResolved() bool {
	resolved := true
	Walk(e, func(v Value) bool {
		if _, ok := v.(Symbol); ok {
			resolved = false
			return false
		}
		return true
	})
	return resolved
}

func (e Expression) FreeSymbols() []string {
	seen := make(map[string]bool)
	var names []string
	Walk(e, func(v Value) bool {
		if s, ok := v.(Symbol); ok && !seen[s.name] {
			seen[s.name] = true
			names = append(names, s.name)
		}
		return true
	})
	SortNames(names)
	return names
}

func (e Expression) Bind(b Bindings) (Value, error) { return Bind(e, b) }

func (e Expression) Equal(other Value) bool { return Equal(e, other) }

func (e Expression) String() string {
	switch e.op {
	case OpScale:
		if len(e.operands) != 1 {
			return "scale(?)"
		}
		return formatMagnitude(e.factor) + "*" + valueString(e.operands[0])
	default:
		parts := make([]string, len(e.operands))
		for i, op := range e.operands {
			parts[i] = valueString(op)
		}
		return "(" + strings.Join(parts, " + ") + ")"
	}
}

// Walk visits v and its descendants in pre-order. Returning false from fn
// stops the walk.
func Walk(v Value, fn func(Value) bool) {
	walk(v, fn)
}

func walk(v Value, fn func(Value) bool) bool {
	if v == nil {
		return true
	}
	if !fn(v) {
		return false
	}
	if e, ok := v.(Expression); ok {
		for _, op := range e.operands {
			if !walk(op, fn) {
				return false
			}
		}
	}
	return true
}

// Equal reports whether a and b are the same duration under unit-literal
// rules: literals need identical unit and magnitude, symbols identical name
// and unit, expressions identical structure. No unit conversion is applied,
// so a dt value never equals an absolute-unit value.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Literal:
		y, ok := b.(Literal)
		return ok && x.Unit() == y.Unit() && x.magnitude == y.magnitude
	case Symbol:
		y, ok := b.(Symbol)
		return ok && x.name == y.name && x.Unit() == y.Unit()
	case Expression:
		y, ok := b.(Expression)
		if !ok || x.op != y.op || x.factor != y.factor || len(x.operands) != len(y.operands) {
			return false
		}
		for i := range x.operands {
			if !Equal(x.operands[i], y.operands[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func valueString(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}

// formatMagnitude renders the shortest decimal that round-trips.
func formatMagnitude(m float64) string {
	return strconv.FormatFloat(m, 'g', -1, 64)
}
