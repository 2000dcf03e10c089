package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds the CLI logger. Logs always go to w (stderr), never
// to command output. Verbose raises the level to at least debug.
func NewLogger(cfg *Config, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	if cfg.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	var zl zerolog.Logger
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		zl = zerolog.New(w)
	case "console", "pretty", "":
		zl = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true})
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q: must be console or json", cfg.LogFormat)
	}

	return zl.Level(level).With().Timestamp().Str("component", "qdelay").Logger(), nil
}
