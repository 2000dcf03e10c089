package circuit

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/abbycross/qiskit/internal/duration"
)

// codecVersion is bumped when the wire layout changes.
const codecVersion = 1

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Deterministic output so equal circuits encode to equal bytes.
	encMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

type wireCircuit struct {
	Version   uint8             `cbor:"1,keyasint"`
	NumQubits int               `cbor:"2,keyasint"`
	Symbols   []wireSymbol      `cbor:"3,keyasint,omitempty"`
	Data      []wireInstruction `cbor:"4,keyasint,omitempty"`
}

type wireSymbol struct {
	Name string `cbor:"1,keyasint"`
	Kind string `cbor:"2,keyasint"`
	Unit string `cbor:"3,keyasint"`
}

type wireInstruction struct {
	Op       string              `cbor:"1,keyasint"`
	Qubits   []int               `cbor:"2,keyasint"`
	Duration *duration.WireValue `cbor:"3,keyasint,omitempty"`
}

// MarshalBinary encodes c as canonical CBOR.
func (c *Circuit) MarshalBinary() ([]byte, error) {
	w := wireCircuit{Version: codecVersion, NumQubits: c.numQubits}
	for _, e := range c.Symbols() {
		w.Symbols = append(w.Symbols, wireSymbol{Name: e.Name, Kind: string(e.Kind), Unit: string(e.Unit)})
	}
	for i, inst := range c.data {
		wi := wireInstruction{Op: inst.Operation.Name(), Qubits: inst.Qubits}
		switch op := inst.Operation.(type) {
		case *Delay:
			dw, err := duration.ToWire(op.Duration())
			if err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			wi.Duration = &dw
		case *Gate:
		default:
			return nil, fmt.Errorf("instruction %d: %w: %T", i, ErrUnknownOperation, op)
		}
		w.Data = append(w.Data, wi)
	}
	return encMode.Marshal(w)
}

// UnmarshalBinary replaces c with the decoded circuit.
func (c *Circuit) UnmarshalBinary(data []byte) error {
	var w wireCircuit
	if err := decMode.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to decode circuit: %w", err)
	}
	if w.Version != codecVersion {
		return fmt.Errorf("unsupported circuit encoding version %d", w.Version)
	}

	symbols := make([]SymbolEntry, len(w.Symbols))
	for i, s := range w.Symbols {
		symbols[i] = SymbolEntry{Name: s.Name, Kind: SymbolKind(s.Kind), Unit: duration.Unit(s.Unit)}
	}
	insts := make([]decodedInstruction, len(w.Data))
	for i, wi := range w.Data {
		insts[i] = decodedInstruction{op: wi.Op, qubits: wi.Qubits}
		if wi.Duration != nil {
			v, err := duration.FromWire(*wi.Duration)
			if err != nil {
				return fmt.Errorf("instruction %d: %w", i, err)
			}
			insts[i].duration = v
		}
	}

	out, err := rebuild(w.NumQubits, symbols, insts)
	if err != nil {
		return err
	}
	*c = *out
	return nil
}

// DecodeBinary is a convenience wrapper around UnmarshalBinary.
func DecodeBinary(data []byte) (*Circuit, error) {
	c := New(0)
	if err := c.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return c, nil
}

type decodedInstruction struct {
	op       string
	qubits   []int
	duration duration.Value
}

// rebuild reconstructs a circuit from decoded parts. The symbol table is
// restored first; every symbol leaf must then name a declared entry, so a
// decoded circuit binds exactly like the one that was encoded.
func rebuild(numQubits int, symbols []SymbolEntry, insts []decodedInstruction) (*Circuit, error) {
	if numQubits < 0 {
		return nil, fmt.Errorf("invalid qubit count %d", numQubits)
	}
	out := New(numQubits)
	for _, e := range symbols {
		switch e.Kind {
		case KindParameter, KindStretch:
		default:
			return nil, fmt.Errorf("symbol %q: unknown kind %q", e.Name, e.Kind)
		}
		if _, err := out.declare(e.Name, e.Kind, e.Unit); err != nil {
			return nil, err
		}
	}

	for i, di := range insts {
		var op Operation
		switch di.op {
		case "delay":
			if di.duration == nil {
				return nil, fmt.Errorf("instruction %d: %w", i, ErrNilDuration)
			}
			d := NewDelay(di.duration)
			for _, s := range d.Symbols() {
				if _, ok := out.symbols[s.Name()]; !ok {
					return nil, fmt.Errorf("instruction %d: %w: %q", i, ErrUndeclaredSymbol, s.Name())
				}
			}
			op = d
		default:
			g, err := StandardGate(di.op)
			if err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			op = g
		}
		if err := out.Append(op, di.qubits...); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return out, nil
}
