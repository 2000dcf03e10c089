package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abbycross/qiskit/internal/circuit"
	"github.com/abbycross/qiskit/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // lint findings fail the command
}

// CircuitSummary describes one compiled circuit.
type CircuitSummary struct {
	Name         string                     `json:"name"`
	NumQubits    int                        `json:"num_qubits"`
	Instructions int                        `json:"instructions"`
	Parameters   []string                   `json:"parameters"`
	Stretches    []string                   `json:"stretches"`
	Durations    []string                   `json:"durations"`
	Resolved     bool                       `json:"resolved"`
	Fingerprint  string                     `json:"fingerprint"`
	Warnings     []compiler.ValidationError `json:"warnings,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool             `json:"valid"`
	Circuits []CircuitSummary `json:"circuits"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file.cue|dir>",
		Short: "Compile and lint circuits",
		Long: `Compile CUE circuit definitions and report a summary per circuit.

Every delay duration is validated while compiling. Lint findings
(unused stretches, mixed units, zero scale factors) are reported as
warnings and fail the command only with --strict.

Exit codes:
  0 - All circuits valid
  1 - Compile error, or warnings with --strict
  2 - Command error (path not found)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat lint warnings as failures")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	compiled, err := LoadCircuits(path)
	if err != nil {
		opts.Logger.Debug().Err(err).Str("path", path).Msg("compile failed")
		return formatter.Fail(loadExitCode(err), loadErrorCode(err), err)
	}
	formatter.VerboseLog("Compiled %d circuit(s) from %s", len(compiled), path)

	result := ValidationResult{Valid: true}
	warnings := 0
	for _, c := range compiled {
		summary, err := summarize(c.Name, c.Circuit)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeGeneric, err)
		}
		summary.Warnings = compiler.Validate(c.Circuit)
		warnings += len(summary.Warnings)
		result.Circuits = append(result.Circuits, summary)
	}
	if opts.Strict && warnings > 0 {
		result.Valid = false
	}

	if err := formatter.Render(result, func(w io.Writer) { writeValidation(w, result) }); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d lint warning(s)", ErrCodeLint, warnings))
	}
	return nil
}

// summarize builds the summary of one circuit.
func summarize(name string, c *circuit.Circuit) (CircuitSummary, error) {
	fp, err := c.Fingerprint()
	if err != nil {
		return CircuitSummary{}, fmt.Errorf("fingerprint %s: %w", name, err)
	}
	return CircuitSummary{
		Name:         name,
		NumQubits:    c.NumQubits(),
		Instructions: c.Len(),
		Parameters:   orEmpty(c.Parameters()),
		Stretches:    orEmpty(c.Stretches()),
		Durations:    delayDurations(c),
		Resolved:     c.IsResolved(),
		Fingerprint:  fp,
	}, nil
}

func writeValidation(w io.Writer, result ValidationResult) {
	for _, s := range result.Circuits {
		writeSummary(w, s)
		for _, warn := range s.Warnings {
			fmt.Fprintf(w, "  warning %s\n", warn.Error())
		}
	}
	if result.Valid {
		fmt.Fprintln(w, "✓ All circuits valid")
	} else {
		fmt.Fprintln(w, "✗ Validation failed")
	}
}

func writeSummary(w io.Writer, s CircuitSummary) {
	fmt.Fprintf(w, "%s: %d qubit(s), %d instruction(s)\n", s.Name, s.NumQubits, s.Instructions)
	if len(s.Durations) > 0 {
		fmt.Fprintf(w, "  durations:   %s\n", strings.Join(s.Durations, ", "))
	}
	if len(s.Parameters) > 0 {
		fmt.Fprintf(w, "  parameters:  %s\n", strings.Join(s.Parameters, ", "))
	}
	if len(s.Stretches) > 0 {
		fmt.Fprintf(w, "  stretches:   %s\n", strings.Join(s.Stretches, ", "))
	}
	fmt.Fprintf(w, "  resolved:    %t\n", s.Resolved)
	fmt.Fprintf(w, "  fingerprint: %s\n", s.Fingerprint)
}

// delayDurations renders each delay's duration in instruction order.
func delayDurations(c *circuit.Circuit) []string {
	out := []string{}
	for _, inst := range c.Data() {
		if d, ok := inst.Operation.(*circuit.Delay); ok {
			out = append(out, d.Duration().String())
		}
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
