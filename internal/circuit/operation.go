package circuit

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/abbycross/qiskit/internal/duration"
)

// Operation is what an Instruction applies to its qubits.
type Operation interface {
	// Name is the stable operation identifier used by the codecs.
	Name() string

	NumQubits() int
	NumClbits() int

	// Equal compares the operation itself; which qubits it acts on is the
	// container's business.
	Equal(other Operation) bool

	// ToMatrix returns the 2^n x 2^n unitary.
	ToMatrix() *mat.CDense

	String() string
}

// Parameterized operations carry symbols that AssignParameters can bind.
type Parameterized interface {
	Operation

	// Symbols returns every symbol leaf, in pre-order, duplicates included.
	Symbols() []duration.Symbol

	FreeSymbols() []string

	// BindParameters returns a new operation with b applied.
	// The receiver is unchanged, including on failure.
	BindParameters(b duration.Bindings) (Operation, error)
}

// Gate is a fixed single-qubit unitary.
type Gate struct {
	name   string
	matrix []complex128 // row-major 2x2
}

var standardGates = map[string][]complex128{
	"h": {
		complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0),
		complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0),
	},
	"x": {0, 1, 1, 0},
}

// StandardGate looks up a gate by name ("h" or "x").
func StandardGate(name string) (*Gate, error) {
	m, ok := standardGates[name]
	if !ok {
		return nil, fmt.Errorf("%w: gate %q", ErrUnknownOperation, name)
	}
	return &Gate{name: name, matrix: m}, nil
}

// HGate returns the Hadamard gate.
func HGate() *Gate { return &Gate{name: "h", matrix: standardGates["h"]} }

// XGate returns the Pauli-X gate.
func XGate() *Gate { return &Gate{name: "x", matrix: standardGates["x"]} }

func (g *Gate) Name() string   { return g.name }
func (g *Gate) NumQubits() int { return 1 }
func (g *Gate) NumClbits() int { return 0 }
func (g *Gate) String() string { return g.name }

func (g *Gate) Equal(other Operation) bool {
	o, ok := other.(*Gate)
	return ok && o != nil && o.name == g.name && slices.Equal(o.matrix, g.matrix)
}

func (g *Gate) ToMatrix() *mat.CDense {
	return mat.NewCDense(2, 2, slices.Clone(g.matrix))
}

// identity builds a dim x dim complex identity.
func identity(dim int) *mat.CDense {
	m := mat.NewCDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// cloneOperation copies an operation for DeepCopy. Operations are
// immutable, so this only matters for identity-sensitive callers.
func cloneOperation(op Operation) Operation {
	switch o := op.(type) {
	case *Delay:
		return o.Clone()
	case *Gate:
		return &Gate{name: o.name, matrix: o.matrix}
	default:
		return op
	}
}
