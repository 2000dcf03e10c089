package cli

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abbycross/qiskit/internal/circuit"
	"github.com/abbycross/qiskit/internal/duration"
)

// AssignOptions holds flags for the assign command.
type AssignOptions struct {
	*RootOptions
	Circuit string   // circuit name, optional when the source holds one
	Set     []string // name=value bindings
	Values  []string // positional values over the parameter order
}

// AssignResult is the bound circuit and the bindings applied.
type AssignResult struct {
	Bindings map[string]any `json:"bindings"`
	Circuit  CircuitSummary `json:"circuit"`
}

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AssignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "assign <file.cue|dir>",
		Short: "Bind parameters and stretches of a circuit",
		Long: `Compile a circuit and bind its parameters and stretches.

Values are integers, decimals or complex literals (1+2i). Complex values
and values that are invalid for the symbol's unit are rejected, and
nothing is bound.

Examples:
  qdelay assign idle.cue --set a=8 --set t=2.5
  qdelay assign idle.cue --circuit echo --values 8,2.5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssign(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "circuit name")
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "binding name=value (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Values, "values", nil, "positional values in parameter order")
	cmd.MarkFlagsMutuallyExclusive("set", "values")

	return cmd
}

func runAssign(opts *AssignOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	bindings, err := ParseBindings(opts.Set)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	compiled, err := LoadCircuits(path)
	if err != nil {
		return formatter.Fail(loadExitCode(err), loadErrorCode(err), err)
	}
	selected, err := SelectCircuit(compiled, opts.Circuit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, err)
	}

	var bound *circuit.Circuit
	if opts.Values != nil {
		values := make([]any, len(opts.Values))
		for i, raw := range opts.Values {
			values[i] = ParseValue(raw)
		}
		bound, err = selected.Circuit.AssignParameterValues(values)
		bindings = positionalBindings(selected.Circuit.Parameters(), values)
	} else {
		bound, err = selected.Circuit.AssignParameters(bindings)
	}
	if err != nil {
		opts.Logger.Debug().Err(err).Str("circuit", selected.Name).Msg("binding rejected")
		return formatter.Fail(ExitFailure, BindErrorCode(err), err)
	}

	summary, err := summarize(selected.Name, bound)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err)
	}
	opts.Logger.Info().Str("circuit", selected.Name).Bool("resolved", summary.Resolved).Msg("parameters assigned")

	result := AssignResult{Bindings: bindings, Circuit: summary}
	return formatter.Render(result, func(w io.Writer) {
		writeSummary(w, summary)
	})
}

// ParseBindings parses name=value pairs.
func ParseBindings(pairs []string) (duration.Bindings, error) {
	b := duration.Bindings{}
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid binding %q: expected name=value", pair)
		}
		if _, dup := b[name]; dup {
			return nil, fmt.Errorf("binding %q given twice", name)
		}
		b[name] = ParseValue(raw)
	}
	return b, nil
}

// ParseValue reads an int, float or complex literal. A float literal too
// large for float64 comes back as ±Inf. Anything else is returned as a
// string, which binding rejects as non-real.
func ParseValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil || (errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0)) {
		return f
	}
	if c, err := strconv.ParseComplex(raw, 128); err == nil {
		return c
	}
	return raw
}

// BindErrorCode maps a binding failure to its response code.
func BindErrorCode(err error) string {
	if code := circuit.ErrorCode(err); code != "" {
		return code
	}
	return ErrCodeBind
}

func positionalBindings(names []string, values []any) map[string]any {
	out := make(map[string]any, len(names))
	for i, name := range names {
		if i < len(values) {
			out[name] = values[i]
		}
	}
	return out
}
