package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abbycross/qiskit/internal/store"
)

// StoredCircuit is a store record with the summary of its circuit.
type StoredCircuit struct {
	Record  store.Record   `json:"record"`
	Circuit CircuitSummary `json:"circuit"`
}

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Circuit string // save only this circuit
}

// DeriveOptions holds flags for the derive command.
type DeriveOptions struct {
	*RootOptions
	Set []string
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <file.cue|dir>",
		Short: "Compile circuits and store them",
		Long: `Compile CUE circuit definitions and store each circuit in the
database given by --db. Every saved circuit gets a new id.

Examples:
  qdelay save idle.cue
  qdelay save ./circuits --circuit echo --db circuits.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "save only this circuit")

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show a stored circuit",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored circuits in save order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

// NewDeriveCommand creates the derive command.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeriveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "derive <id>",
		Short: "Bind a stored circuit and store the result",
		Long: `Load a stored circuit, bind parameters and stretches, and store
the bound circuit as a new record whose parent is <id>. The parent
record is not changed.

Example:
  qdelay derive 0192f3c1-... --set a=8 --set t=2.5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "binding name=value (repeatable)")

	return cmd
}

// openStore opens the store named by --db.
func openStore(opts *RootOptions, formatter *OutputFormatter) (*store.Store, error) {
	st, err := store.Open(opts.DB, store.WithLogger(opts.Logger))
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStore, err)
	}
	formatter.VerboseLog("Opened store %s", opts.DB)
	return st, nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// storeFailure maps a store error to its exit code and response code.
func storeFailure(formatter *OutputFormatter, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, err)
	}
	if code := BindErrorCode(err); code != ErrCodeBind {
		return formatter.Fail(ExitFailure, code, err)
	}
	return formatter.Fail(ExitFailure, ErrCodeStore, err)
}

func runSave(opts *SaveOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	compiled, err := LoadCircuits(path)
	if err != nil {
		return formatter.Fail(loadExitCode(err), loadErrorCode(err), err)
	}
	if opts.Circuit != "" {
		selected, err := SelectCircuit(compiled, opts.Circuit)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, err)
		}
		compiled = compiled[:0]
		compiled = append(compiled, selected)
	}

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)

	saved := make([]StoredCircuit, 0, len(compiled))
	for _, c := range compiled {
		rec, err := st.Save(ctx, c.Name, c.Circuit)
		if err != nil {
			return storeFailure(formatter, err)
		}
		summary, err := summarize(c.Name, c.Circuit)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeGeneric, err)
		}
		opts.Logger.Info().Str("id", rec.ID).Str("circuit", rec.Name).Msg("circuit saved")
		saved = append(saved, StoredCircuit{Record: rec, Circuit: summary})
	}

	return formatter.Render(saved, func(w io.Writer) {
		for _, s := range saved {
			fmt.Fprintf(w, "saved %s %s\n", s.Record.ID, s.Record.Name)
		}
	})
}

func runShow(opts *RootOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)

	rec, err := st.Get(ctx, id)
	if err != nil {
		return storeFailure(formatter, err)
	}
	c, err := st.Load(ctx, id)
	if err != nil {
		return storeFailure(formatter, err)
	}
	summary, err := summarize(rec.Name, c)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err)
	}

	shown := StoredCircuit{Record: rec, Circuit: summary}
	return formatter.Render(shown, func(w io.Writer) {
		writeRecord(w, rec)
		writeSummary(w, summary)
	})
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)

	records, err := st.List(ctx)
	if err != nil {
		return storeFailure(formatter, err)
	}
	if records == nil {
		records = []store.Record{}
	}

	return formatter.Render(records, func(w io.Writer) {
		if len(records) == 0 {
			fmt.Fprintln(w, "no circuits stored")
			return
		}
		for _, r := range records {
			state := "unresolved"
			if r.Resolved {
				state = "resolved"
			}
			fmt.Fprintf(w, "%s  %-16s %d qubit(s)  %s\n", r.ID, r.Name, r.NumQubits, state)
		}
	})
}

func runDerive(opts *DeriveOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	bindings, err := ParseBindings(opts.Set)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)

	rec, bound, err := st.Derive(ctx, id, bindings)
	if err != nil {
		opts.Logger.Debug().Err(err).Str("parent", id).Msg("derive failed")
		return storeFailure(formatter, err)
	}
	summary, err := summarize(rec.Name, bound)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err)
	}
	opts.Logger.Info().Str("id", rec.ID).Str("parent", id).Msg("circuit derived")

	derived := StoredCircuit{Record: rec, Circuit: summary}
	return formatter.Render(derived, func(w io.Writer) {
		writeRecord(w, rec)
		writeSummary(w, summary)
	})
}

func writeRecord(w io.Writer, r store.Record) {
	fmt.Fprintf(w, "id: %s\n", r.ID)
	if r.ParentID != "" {
		fmt.Fprintf(w, "parent: %s\n", r.ParentID)
		fmt.Fprintf(w, "bindings: %s\n", r.Bindings)
	}
}
