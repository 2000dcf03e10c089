package duration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// JSON kind tags.
const (
	kindLiteral    = "literal"
	kindSymbol     = "symbol"
	kindExpression = "expression"
)

// MarshalValue produces deterministic JSON for a value.
// Keys are written in a fixed alphabetical order and HTML escaping is off,
// so equal values always produce identical bytes.
func MarshalValue(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch x := v.(type) {
	case Literal:
		buf.WriteString(`{"kind":"literal","magnitude":`)
		buf.WriteString(formatMagnitude(x.magnitude))
		buf.WriteString(`,"unit":`)
		if err := writeString(buf, string(x.Unit())); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Symbol:
		buf.WriteString(`{"kind":"symbol","name":`)
		if err := writeString(buf, x.name); err != nil {
			return err
		}
		buf.WriteString(`,"unit":`)
		if err := writeString(buf, string(x.Unit())); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Expression:
		buf.WriteString(`{"factor":`)
		buf.WriteString(formatMagnitude(x.factor))
		buf.WriteString(`,"kind":"expression","op":`)
		if err := writeString(buf, string(x.op)); err != nil {
			return err
		}
		buf.WriteString(`,"operands":[`)
		for i, op := range x.operands {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, op); err != nil {
				return fmt.Errorf("operands[%d]: %w", i, err)
			}
		}
		buf.WriteString("]}")
	default:
		return fmt.Errorf("unknown duration value type: %T", v)
	}
	return nil
}

// writeString encodes s as a JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Literal) MarshalJSON() ([]byte, error) { return MarshalValue(l) }

// MarshalJSON implements json.Marshaler.
func (s Symbol) MarshalJSON() ([]byte, error) { return MarshalValue(s) }

// MarshalJSON implements json.Marshaler.
func (e Expression) MarshalJSON() ([]byte, error) { return MarshalValue(e) }

// rawValue is the decoded shape of every JSON kind.
type rawValue struct {
	Kind      string            `json:"kind"`
	Magnitude json.Number       `json:"magnitude"`
	Unit      string            `json:"unit"`
	Name      string            `json:"name"`
	Op        string            `json:"op"`
	Factor    json.Number       `json:"factor"`
	Operands  []json.RawMessage `json:"operands"`
}

// UnmarshalValue decodes JSON produced by MarshalValue. Literals are
// rebuilt through NewLiteral, so corrupt input cannot yield an invalid
// value.
func UnmarshalValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw rawValue
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode duration: %w", err)
	}

	switch raw.Kind {
	case kindLiteral:
		unit, err := ParseUnit(raw.Unit)
		if err != nil {
			return nil, err
		}
		m, err := parseNumber("magnitude", raw.Magnitude)
		if err != nil {
			return nil, err
		}
		return NewLiteral(m, unit)
	case kindSymbol:
		unit, err := ParseUnit(raw.Unit)
		if err != nil {
			return nil, err
		}
		if raw.Name == "" {
			return nil, fmt.Errorf("decode duration: symbol without name")
		}
		return NewSymbol(raw.Name, unit), nil
	case kindExpression:
		factor, err := parseNumber("factor", raw.Factor)
		if err != nil {
			return nil, err
		}
		operands := make([]Value, len(raw.Operands))
		for i, rm := range raw.Operands {
			op, err := UnmarshalValue(rm)
			if err != nil {
				return nil, fmt.Errorf("operands[%d]: %w", i, err)
			}
			operands[i] = op
		}
		return buildExpression(Op(raw.Op), factor, operands)
	default:
		return nil, fmt.Errorf("decode duration: unknown kind %q", raw.Kind)
	}
}

func parseNumber(field string, n json.Number) (float64, error) {
	if n == "" {
		return 0, fmt.Errorf("decode duration: missing %s", field)
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, fmt.Errorf("decode duration: %s: %w", field, err)
	}
	return f, nil
}

// buildExpression checks operand arity for decoded expressions.
func buildExpression(op Op, factor float64, operands []Value) (Expression, error) {
	switch op {
	case OpAdd:
		if len(operands) == 0 {
			return Expression{}, fmt.Errorf("decode duration: add needs at least one operand")
		}
		return Add(operands[0], operands[1:]...), nil
	case OpScale:
		if len(operands) != 1 {
			return Expression{}, fmt.Errorf("decode duration: scale needs exactly one operand, got %d", len(operands))
		}
		return NewScale(factor, operands[0])
	default:
		return Expression{}, fmt.Errorf("decode duration: unknown op %q", op)
	}
}
