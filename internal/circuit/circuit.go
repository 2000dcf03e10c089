package circuit

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/abbycross/qiskit/internal/duration"
)

// Instruction is an operation bound to qubit indices.
// Instructions returned by Data share storage with the circuit and must
// be treated as read-only.
type Instruction struct {
	Operation Operation
	Qubits    []int
}

// Equal compares operation and operands.
func (i Instruction) Equal(other Instruction) bool {
	if i.Operation == nil || other.Operation == nil {
		return i.Operation == nil && other.Operation == nil && slices.Equal(i.Qubits, other.Qubits)
	}
	return i.Operation.Equal(other.Operation) && slices.Equal(i.Qubits, other.Qubits)
}

// SymbolKind distinguishes declared stretches from implicit parameters.
type SymbolKind string

const (
	// KindParameter is registered implicitly when an instruction uses it.
	KindParameter SymbolKind = "parameter"

	// KindStretch is declared up front with AddStretch.
	KindStretch SymbolKind = "stretch"
)

// SymbolEntry is one slot of the circuit's symbol table.
type SymbolEntry struct {
	Name string
	Kind SymbolKind

	// Unit is the unit declared for a stretch, or the unit of the leaf
	// that registered a parameter. Every later leaf with this name must
	// carry the same unit.
	Unit duration.Unit
}

// Circuit is an ordered list of instructions over a fixed number of qubits.
type Circuit struct {
	numQubits int
	data      []Instruction
	symbols   map[string]SymbolEntry
}

// New creates an empty circuit.
func New(numQubits int) *Circuit {
	if numQubits < 0 {
		numQubits = 0
	}
	return &Circuit{numQubits: numQubits, symbols: make(map[string]SymbolEntry)}
}

// NumQubits returns the qubit count.
func (c *Circuit) NumQubits() int { return c.numQubits }

// Len returns the number of instructions.
func (c *Circuit) Len() int { return len(c.data) }

// Data returns the instruction list. The slice is a copy; the
// instructions are shared.
func (c *Circuit) Data() []Instruction {
	return slices.Clone(c.data)
}

// At returns the i-th instruction.
func (c *Circuit) At(i int) Instruction { return c.data[i] }

// Append adds op acting on qubits. Every free symbol of a parameterized
// op that is not yet declared is registered as a parameter. A symbol
// whose unit differs from its table entry fails with ErrSymbolUnit.
func (c *Circuit) Append(op Operation, qubits ...int) error {
	if err := c.checkOperands(op, qubits); err != nil {
		return err
	}
	if err := c.checkSymbolUnits(op); err != nil {
		return err
	}
	c.register(op)
	c.data = append(c.data, Instruction{Operation: op, Qubits: slices.Clone(qubits)})
	return nil
}

func (c *Circuit) checkOperands(op Operation, qubits []int) error {
	if op == nil {
		return ErrNilOperation
	}
	if len(qubits) != op.NumQubits() {
		return fmt.Errorf("%w: %s takes %d qubit(s), got %d", ErrArity, op.Name(), op.NumQubits(), len(qubits))
	}
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if q < 0 || q >= c.numQubits {
			return fmt.Errorf("%w: %d (circuit has %d)", ErrQubitOutOfRange, q, c.numQubits)
		}
		if seen[q] {
			return fmt.Errorf("%w: %d", ErrDuplicateQubit, q)
		}
		seen[q] = true
	}
	return nil
}

func (c *Circuit) checkSymbolUnits(op Operation) error {
	p, ok := op.(Parameterized)
	if !ok {
		return nil
	}
	units := make(map[string]duration.Unit)
	for name, e := range c.symbols {
		units[name] = e.Unit
	}
	for _, s := range p.Symbols() {
		if u, ok := units[s.Name()]; ok && u != s.Unit() {
			return fmt.Errorf("%w: %q is %s, got %s", ErrSymbolUnit, s.Name(), u, s.Unit())
		}
		units[s.Name()] = s.Unit()
	}
	return nil
}

func (c *Circuit) register(op Operation) {
	p, ok := op.(Parameterized)
	if !ok {
		return
	}
	if c.symbols == nil {
		c.symbols = make(map[string]SymbolEntry)
	}
	for _, s := range p.Symbols() {
		if _, exists := c.symbols[s.Name()]; exists {
			continue
		}
		c.symbols[s.Name()] = SymbolEntry{Name: s.Name(), Kind: KindParameter, Unit: s.Unit()}
	}
}

// Delay appends one Delay per qubit. With no qubits it covers every
// qubit. Repeated indices collapse to one delay. Nothing is appended if
// any index is invalid.
func (c *Circuit) Delay(d duration.Value, qubits ...int) error {
	if d == nil {
		return ErrNilDuration
	}
	if len(qubits) == 0 {
		qubits = make([]int, c.numQubits)
		for i := range qubits {
			qubits[i] = i
		}
	}

	targets := make([]int, 0, len(qubits))
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if q < 0 || q >= c.numQubits {
			return fmt.Errorf("%w: %d (circuit has %d)", ErrQubitOutOfRange, q, c.numQubits)
		}
		if !seen[q] {
			seen[q] = true
			targets = append(targets, q)
		}
	}

	for _, q := range targets {
		if err := c.Append(NewDelay(d), q); err != nil {
			return err
		}
	}
	return nil
}

// DelayOf is Delay with a literal built from magnitude and unit.
func (c *Circuit) DelayOf(magnitude float64, unit string, qubits ...int) error {
	op, err := NewDelayOf(magnitude, unit)
	if err != nil {
		return err
	}
	return c.Delay(op.Duration(), qubits...)
}

// H appends a Hadamard on q.
func (c *Circuit) H(q int) error { return c.Append(HGate(), q) }

// X appends a Pauli-X on q.
func (c *Circuit) X(q int) error { return c.Append(XGate(), q) }

// AddStretch declares a named stretch and returns its symbol.
func (c *Circuit) AddStretch(name string, unit duration.Unit) (duration.Symbol, error) {
	return c.declare(name, KindStretch, unit)
}

// AddParameter declares a parameter ahead of use.
func (c *Circuit) AddParameter(name string, unit duration.Unit) (duration.Symbol, error) {
	return c.declare(name, KindParameter, unit)
}

func (c *Circuit) declare(name string, kind SymbolKind, unit duration.Unit) (duration.Symbol, error) {
	if strings.TrimSpace(name) == "" {
		return duration.Symbol{}, fmt.Errorf("%w: %q", ErrInvalidSymbolName, name)
	}
	if unit == "" {
		unit = duration.DefaultUnit
	}
	if !unit.Valid() {
		_, err := duration.ParseUnit(string(unit))
		return duration.Symbol{}, err
	}
	if c.symbols == nil {
		c.symbols = make(map[string]SymbolEntry)
	}
	sym := duration.NewSymbol(name, unit)
	if existing, ok := c.symbols[sym.Name()]; ok {
		return duration.Symbol{}, fmt.Errorf("%w: %q is a %s", ErrDuplicateSymbol, sym.Name(), existing.Kind)
	}
	c.symbols[sym.Name()] = SymbolEntry{Name: sym.Name(), Kind: kind, Unit: unit}
	return sym, nil
}

// Parameters returns the parameter names sorted by duration.CompareNames.
func (c *Circuit) Parameters() []string {
	return c.symbolNames(KindParameter)
}

// Stretches returns the stretch names sorted by duration.CompareNames.
func (c *Circuit) Stretches() []string {
	return c.symbolNames(KindStretch)
}

func (c *Circuit) symbolNames(kind SymbolKind) []string {
	var names []string
	for name, e := range c.symbols {
		if e.Kind == kind {
			names = append(names, name)
		}
	}
	duration.SortNames(names)
	return names
}

// Symbols returns every table entry sorted by name.
func (c *Circuit) Symbols() []SymbolEntry {
	out := make([]SymbolEntry, 0, len(c.symbols))
	for _, e := range c.symbols {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b SymbolEntry) int { return duration.CompareNames(a.Name, b.Name) })
	return out
}

// Symbol looks up a table entry.
func (c *Circuit) Symbol(name string) (SymbolEntry, bool) {
	e, ok := c.symbols[duration.NewSymbol(name, "").Name()]
	return e, ok
}

// IsResolved reports whether no instruction carries a free symbol.
func (c *Circuit) IsResolved() bool {
	for _, inst := range c.data {
		if p, ok := inst.Operation.(Parameterized); ok && len(p.FreeSymbols()) > 0 {
			return false
		}
	}
	return true
}

// Copy returns a circuit sharing operations with c. Operations are
// immutable, so the copy is independent for every public mutation.
func (c *Circuit) Copy() *Circuit {
	return &Circuit{
		numQubits: c.numQubits,
		data:      slices.Clone(c.data),
		symbols:   maps.Clone(c.symbols),
	}
}

// DeepCopy returns a circuit with fresh operation and operand storage.
func (c *Circuit) DeepCopy() *Circuit {
	out := &Circuit{
		numQubits: c.numQubits,
		data:      make([]Instruction, len(c.data)),
		symbols:   maps.Clone(c.symbols),
	}
	for i, inst := range c.data {
		out.data[i] = Instruction{Operation: cloneOperation(inst.Operation), Qubits: slices.Clone(inst.Qubits)}
	}
	return out
}

// Equal compares qubit count, instructions in order and the symbol table.
func (c *Circuit) Equal(other *Circuit) bool {
	if c == nil || other == nil {
		return c == nil && other == nil
	}
	if c.numQubits != other.numQubits || len(c.data) != len(other.data) {
		return false
	}
	for i := range c.data {
		if !c.data[i].Equal(other.data[i]) {
			return false
		}
	}
	return maps.Equal(c.symbols, other.symbols)
}

// String renders one instruction per line.
func (c *Circuit) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "circuit(%d qubits)", c.numQubits)
	for _, e := range c.Symbols() {
		fmt.Fprintf(&b, "\n  %s %s:%s", e.Kind, e.Name, e.Unit)
	}
	for _, inst := range c.data {
		qs := make([]string, len(inst.Qubits))
		for i, q := range inst.Qubits {
			qs[i] = fmt.Sprintf("q[%d]", q)
		}
		fmt.Fprintf(&b, "\n  %s %s", inst.Operation, strings.Join(qs, ", "))
	}
	return b.String()
}
