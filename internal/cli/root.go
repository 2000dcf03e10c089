package cli

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands. Fields are filled
// from flags, environment and config file before any subcommand runs.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	LogLevel  string
	LogFormat string // "console" | "json"
	DB        string

	ConfigFile string
	EnvFile    string

	Logger zerolog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the qdelay CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Logger: zerolog.Nop()}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "qdelay",
		Short: "qdelay - circuit delay durations",
		Long:  "Validate, bind and store quantum circuits whose delays carry dt or SI durations.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(v, opts.ConfigFile, opts.EnvFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			cfg.apply(opts)

			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			logger, err := NewLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to build logger", err)
			}
			opts.Logger = logger
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.String("log-level", "warn", "log level (debug|info|warn|error)")
	flags.String("log-format", "console", "log format (console|json)")
	flags.String("db", "qdelay.db", "path to the circuit store")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&opts.EnvFile, "env-file", "", "dotenv file loaded before reading QDELAY_* variables")
	bindFlags(v, cmd)

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewAssignCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeriveCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newFormatter builds the formatter every command writes through.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
