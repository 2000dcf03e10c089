package duration

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Wire kinds for the CBOR form.
const (
	WireLiteral uint8 = 1
	WireSymbol  uint8 = 2
	WireAdd     uint8 = 3
	WireScale   uint8 = 4
)

// WireValue is the CBOR shape of a Value. Integer keys keep the encoding
// compact; containers embed it directly.
type WireValue struct {
	Kind      uint8       `cbor:"1,keyasint"`
	Magnitude float64     `cbor:"2,keyasint,omitempty"`
	Unit      string      `cbor:"3,keyasint,omitempty"`
	Name      string      `cbor:"4,keyasint,omitempty"`
	Factor    float64     `cbor:"5,keyasint,omitempty"`
	Operands  []WireValue `cbor:"6,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// ToWire converts a value to its CBOR shape.
func ToWire(v Value) (WireValue, error) {
	switch x := v.(type) {
	case Literal:
		return WireValue{Kind: WireLiteral, Magnitude: x.magnitude, Unit: string(x.Unit())}, nil
	case Symbol:
		return WireValue{Kind: WireSymbol, Name: x.name, Unit: string(x.Unit())}, nil
	case Expression:
		w := WireValue{Kind: WireAdd, Operands: make([]WireValue, len(x.operands))}
		if x.op == OpScale {
			w.Kind = WireScale
			w.Factor = x.factor
		}
		for i, op := range x.operands {
			ow, err := ToWire(op)
			if err != nil {
				return WireValue{}, fmt.Errorf("operands[%d]: %w", i, err)
			}
			w.Operands[i] = ow
		}
		return w, nil
	default:
		return WireValue{}, fmt.Errorf("unknown duration value type: %T", v)
	}
}

// FromWire rebuilds a value, re-running construction validation.
func FromWire(w WireValue) (Value, error) {
	switch w.Kind {
	case WireLiteral:
		unit, err := ParseUnit(w.Unit)
		if err != nil {
			return nil, err
		}
		return NewLiteral(w.Magnitude, unit)
	case WireSymbol:
		unit, err := ParseUnit(w.Unit)
		if err != nil {
			return nil, err
		}
		if w.Name == "" {
			return nil, fmt.Errorf("decode duration: symbol without name")
		}
		return NewSymbol(w.Name, unit), nil
	case WireAdd, WireScale:
		operands := make([]Value, len(w.Operands))
		for i, ow := range w.Operands {
			op, err := FromWire(ow)
			if err != nil {
				return nil, fmt.Errorf("operands[%d]: %w", i, err)
			}
			operands[i] = op
		}
		if w.Kind == WireAdd {
			return buildExpression(OpAdd, 1, operands)
		}
		return buildExpression(OpScale, w.Factor, operands)
	default:
		return nil, fmt.Errorf("decode duration: unknown wire kind %d", w.Kind)
	}
}

// EncodeCBOR serializes a value with canonical CBOR.
func EncodeCBOR(v Value) ([]byte, error) {
	w, err := ToWire(v)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(w)
}

// DecodeCBOR parses bytes produced by EncodeCBOR.
func DecodeCBOR(data []byte) (Value, error) {
	var w WireValue
	if err := decMode.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode duration: %w", err)
	}
	return FromWire(w)
}
