package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abbycross/qiskit/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern)
	GoldenDir string // golden file directory, default <scenario dir>/golden
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml|dir>...",
		Short: "Run scenario tests",
		Long: `Run YAML scenarios through the harness.

Each scenario compiles a circuit, applies its steps and checks its
assertions. When a golden file exists for the scenario, the trace must
also match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  qdelay test ./scenarios
  qdelay test ./scenarios --filter "delay_*"
  qdelay test ./scenarios --update
  qdelay test ./scenarios --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	var scenarioFiles []string
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("scenario path not found: %s", path))
		}
		files, err := findScenarioFiles(path, opts.Filter)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Errorf("failed to find scenarios: %w", err))
		}
		scenarioFiles = append(scenarioFiles, files...)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	w := io.Discard
	if opts.Format != "json" {
		w = cmd.OutOrStdout()
	}
	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(opts, scenarioFile)
		writeScenarioResult(w, scenResult)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if err := formatter.Render(result, func(w io.Writer) { writeTestSummary(w, result) }); err != nil {
		return err
	}
	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d scenario(s) failed", ErrCodeTestFailed, result.Failed))
	}
	return nil
}

// findScenarioFiles returns path itself for a file, or the YAML files
// under a directory.
func findScenarioFiles(path string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})

	return files, err
}

// runScenario executes a single scenario and returns the result.
func runScenario(opts *TestOptions, scenarioFile string) ScenarioResult {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(scenario, harness.WithLogger(opts.Logger))
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	trace, err := harness.MarshalSnapshot(harness.TraceSnapshot{
		ScenarioName: scenario.Name,
		Pass:         result.Pass,
		Trace:        result.Trace,
	})
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("failed to marshal trace: %v", err)},
		}
	}

	goldenPath := goldenFilePath(opts.GoldenDir, scenarioFile, scenario.Name)
	if opts.Update {
		if err := writeGoldenFile(goldenPath, trace); err != nil {
			return ScenarioResult{
				Name:   scenario.Name,
				Errors: []string{fmt.Sprintf("failed to update golden file: %v", err)},
			}
		}
		opts.Logger.Info().Str("scenario", scenario.Name).Str("golden", goldenPath).Msg("golden updated")
		return ScenarioResult{Name: scenario.Name, Pass: result.Pass, Errors: result.Errors}
	}

	errs := append([]string{}, result.Errors...)
	golden, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
		// No golden file - assertion-based validation only
	case err != nil:
		errs = append(errs, fmt.Sprintf("failed to read golden file: %v", err))
	case !bytes.Equal(golden, trace):
		errs = append(errs, "trace does not match golden file (run with --update to regenerate)")
	}

	return ScenarioResult{
		Name:   scenario.Name,
		Pass:   len(errs) == 0,
		Errors: errs,
	}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(goldenDir, scenarioFile, name string) string {
	if goldenDir == "" {
		goldenDir = filepath.Join(filepath.Dir(scenarioFile), "golden")
	}
	return filepath.Join(goldenDir, name+".golden")
}

// writeGoldenFile writes the current trace as the golden file.
func writeGoldenFile(path string, trace []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, trace, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

func writeScenarioResult(w io.Writer, r ScenarioResult) {
	if r.Pass {
		fmt.Fprintf(w, "✓ %s\n", r.Name)
		return
	}
	fmt.Fprintf(w, "✗ %s\n", r.Name)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func writeTestSummary(w io.Writer, result TestResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}
