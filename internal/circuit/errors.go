package circuit

import (
	"errors"

	"github.com/abbycross/qiskit/internal/duration"
)

// Container errors. Duration validation failures are not listed here:
// they come from the duration package unchanged.
var (
	ErrNilOperation      = errors.New("nil operation")
	ErrNilDuration       = errors.New("nil duration")
	ErrArity             = errors.New("operation arity mismatch")
	ErrQubitOutOfRange   = errors.New("qubit index out of range")
	ErrDuplicateQubit    = errors.New("duplicate qubit in operands")
	ErrInvalidSymbolName = errors.New("invalid symbol name")
	ErrDuplicateSymbol   = errors.New("symbol already declared")
	ErrSymbolUnit        = errors.New("symbol used with a different unit")
	ErrUnknownParameter  = errors.New("parameter not present in circuit")
	ErrUndeclaredSymbol  = errors.New("symbol not declared in circuit")
	ErrValueCount        = errors.New("wrong number of parameter values")
	ErrUnknownOperation  = errors.New("unknown operation")
)

// Codes for binding failures that are not duration rules.
const (
	CodeUnknownParameter = "UNKNOWN_PARAMETER"
	CodeValueCount       = "VALUE_COUNT"
	CodeSymbolUnit       = "SYMBOL_UNIT"
)

// ErrorCode names the failure behind err: the duration rule when there is
// one, else a Code constant. It returns "" for anything else.
func ErrorCode(err error) string {
	if rule := duration.RuleOf(err); rule != "" {
		return string(rule)
	}
	switch {
	case errors.Is(err, ErrUnknownParameter):
		return CodeUnknownParameter
	case errors.Is(err, ErrValueCount):
		return CodeValueCount
	case errors.Is(err, ErrSymbolUnit):
		return CodeSymbolUnit
	default:
		return ""
	}
}
