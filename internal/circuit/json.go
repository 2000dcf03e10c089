package circuit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/abbycross/qiskit/internal/duration"
)

type jsonCircuit struct {
	NumQubits int               `json:"num_qubits"`
	Symbols   []jsonSymbol      `json:"symbols"`
	Data      []jsonInstruction `json:"data"`
}

type jsonSymbol struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Unit string `json:"unit"`
}

type jsonInstruction struct {
	Op       string          `json:"op"`
	Qubits   []int           `json:"qubits"`
	Duration json.RawMessage `json:"duration,omitempty"`
}

// MarshalJSON produces deterministic JSON: symbols sorted by name,
// instructions in order, durations in duration.MarshalValue form,
// no HTML escaping. Fingerprint hashes exactly these bytes.
func (c *Circuit) MarshalJSON() ([]byte, error) {
	jc := jsonCircuit{
		NumQubits: c.numQubits,
		Symbols:   []jsonSymbol{},
		Data:      []jsonInstruction{},
	}
	for _, e := range c.Symbols() {
		jc.Symbols = append(jc.Symbols, jsonSymbol{Name: e.Name, Kind: string(e.Kind), Unit: string(e.Unit)})
	}
	for i, inst := range c.data {
		ji := jsonInstruction{Op: inst.Operation.Name(), Qubits: inst.Qubits}
		if ji.Qubits == nil {
			ji.Qubits = []int{}
		}
		switch op := inst.Operation.(type) {
		case *Delay:
			raw, err := duration.MarshalValue(op.Duration())
			if err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			ji.Duration = raw
		case *Gate:
		default:
			return nil, fmt.Errorf("instruction %d: %w: %T", i, ErrUnknownOperation, op)
		}
		jc.Data = append(jc.Data, ji)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(jc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// UnmarshalJSON replaces c with the decoded circuit.
func (c *Circuit) UnmarshalJSON(data []byte) error {
	var jc jsonCircuit
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to decode circuit: %w", err)
	}

	symbols := make([]SymbolEntry, len(jc.Symbols))
	for i, s := range jc.Symbols {
		symbols[i] = SymbolEntry{Name: s.Name, Kind: SymbolKind(s.Kind), Unit: duration.Unit(s.Unit)}
	}
	insts := make([]decodedInstruction, len(jc.Data))
	for i, ji := range jc.Data {
		insts[i] = decodedInstruction{op: ji.Op, qubits: ji.Qubits}
		if len(ji.Duration) > 0 {
			v, err := duration.UnmarshalValue(ji.Duration)
			if err != nil {
				return fmt.Errorf("instruction %d: %w", i, err)
			}
			insts[i].duration = v
		}
	}

	out, err := rebuild(jc.NumQubits, symbols, insts)
	if err != nil {
		return err
	}
	*c = *out
	return nil
}
