package duration

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Bindings maps symbol names to substitution numbers.
// Accepted numbers are Go integer and float kinds plus json.Number;
// anything else (including complex numbers) is rejected as non-real.
type Bindings map[string]any

// lookup finds the substitution for an NFC-normalized symbol name,
// tolerating keys that were written in another normalization form.
func (b Bindings) lookup(name string) (any, bool) {
	if v, ok := b[name]; ok {
		return v, true
	}
	for k, v := range b {
		if norm.NFC.String(k) == name {
			return v, true
		}
	}
	return nil, false
}

// Names returns the binding keys, NFC-normalized and sorted by CompareNames.
func (b Bindings) Names() []string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, norm.NFC.String(k))
	}
	SortNames(names)
	return names
}

// Bind replaces every Symbol in v whose name appears in b with a Literal
// of the symbol's unit. Each substitution goes through NewLiteral, so a
// negative, non-finite, non-real, or (under dt) fractional number fails
// with an InvalidDurationError naming the symbol.
//
// Symbols not in b stay unresolved. The result is a new value; v is
// never modified. Expressions are rebuilt with the same shape.
func Bind(v Value, b Bindings) (Value, error) {
	switch x := v.(type) {
	case Literal:
		return x, nil
	case Symbol:
		raw, ok := b.lookup(x.name)
		if !ok {
			return x, nil
		}
		magnitude, err := realNumber(raw)
		if err != nil {
			return nil, withSymbol(err, x)
		}
		lit, err := NewLiteral(magnitude, x.Unit())
		if err != nil {
			return nil, withSymbol(err, x)
		}
		return lit, nil
	case Expression:
		operands := make([]Value, len(x.operands))
		for i, op := range x.operands {
			bound, err := Bind(op, b)
			if err != nil {
				return nil, err
			}
			operands[i] = bound
		}
		return Expression{op: x.op, factor: x.factor, operands: operands}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("duration: unsupported value type %T", v)
	}
}

func withSymbol(err error, s Symbol) error {
	var ide *InvalidDurationError
	if errors.As(err, &ide) {
		ide.Symbol = s.name
		ide.Unit = s.Unit()
	}
	return err
}

// realNumber accepts plain real numbers only.
func realNumber(raw any) (float64, error) {
	switch n := raw.(type) {
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &InvalidDurationError{Rule: RuleNonReal, Value: raw, Detail: err.Error()}
		}
		return f, nil
	default:
		return 0, &InvalidDurationError{Rule: RuleNonReal, Value: raw}
	}
}
