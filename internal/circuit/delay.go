package circuit

import (
	"gonum.org/v1/gonum/mat"

	"github.com/abbycross/qiskit/internal/duration"
)

// Delay idles one qubit for a duration. It has no effect on the state:
// its matrix is the identity whatever the duration, resolved or not.
type Delay struct {
	duration duration.Value
}

// NewDelay wraps d. The delay takes its unit from d; it never picks one.
func NewDelay(d duration.Value) *Delay {
	return &Delay{duration: d}
}

// NewDelayOf builds a literal delay from a magnitude and a unit string.
// An empty unit means dt. Validation is the duration package's.
func NewDelayOf(magnitude float64, unit string) (*Delay, error) {
	u, err := duration.ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	lit, err := duration.NewLiteral(magnitude, u)
	if err != nil {
		return nil, err
	}
	return NewDelay(lit), nil
}

// Duration returns the wrapped value.
func (d *Delay) Duration() duration.Value { return d.duration }

// Unit returns the unit carried by the duration.
func (d *Delay) Unit() duration.Unit {
	if d.duration == nil {
		return duration.DefaultUnit
	}
	return d.duration.Unit()
}

func (d *Delay) IsResolved() bool {
	return d.duration == nil || d.duration.IsResolved()
}

func (d *Delay) FreeSymbols() []string {
	if d.duration == nil {
		return nil
	}
	return d.duration.FreeSymbols()
}

func (d *Delay) Symbols() []duration.Symbol {
	var out []duration.Symbol
	duration.Walk(d.duration, func(v duration.Value) bool {
		if s, ok := v.(duration.Symbol); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

func (d *Delay) Name() string   { return "delay" }
func (d *Delay) NumQubits() int { return 1 }
func (d *Delay) NumClbits() int { return 0 }

func (d *Delay) String() string {
	if d.duration == nil {
		return "delay(?)"
	}
	return "delay(" + d.duration.String() + ")"
}

// Equal is true iff other is a Delay with an equal duration.
func (d *Delay) Equal(other Operation) bool {
	o, ok := other.(*Delay)
	return ok && o != nil && duration.Equal(d.duration, o.duration)
}

// ToMatrix returns the identity of dimension 2^NumQubits.
func (d *Delay) ToMatrix() *mat.CDense {
	return identity(1 << d.NumQubits())
}

// Rebind applies b to the duration and returns a new Delay.
// Failures come straight from duration.Bind; d is left as it was.
func (d *Delay) Rebind(b duration.Bindings) (*Delay, error) {
	bound, err := duration.Bind(d.duration, b)
	if err != nil {
		return nil, err
	}
	return &Delay{duration: bound}, nil
}

// BindParameters implements Parameterized.
func (d *Delay) BindParameters(b duration.Bindings) (Operation, error) {
	nd, err := d.Rebind(b)
	if err != nil {
		return nil, err
	}
	return nd, nil
}

// Clone returns a distinct Delay sharing the immutable duration.
func (d *Delay) Clone() *Delay {
	return &Delay{duration: d.duration}
}
