package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boundViper returns a viper bound to a fresh root command's flags.
func boundViper(t *testing.T) (*viper.Viper, *cobra.Command) {
	t.Helper()
	cmd := NewRootCommand()
	v := viper.New()
	bindFlags(v, cmd)
	return v, cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	v, _ := boundViper(t)

	cfg, err := LoadConfig(v, "", "")
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "qdelay.db", cfg.DB)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("QDELAY_DB", "/tmp/circuits.db")
	t.Setenv("QDELAY_LOG_LEVEL", "debug")
	v, _ := boundViper(t)

	cfg, err := LoadConfig(v, "", "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/circuits.db", cfg.DB)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_FlagWins(t *testing.T) {
	t.Setenv("QDELAY_DB", "/tmp/env.db")
	v, cmd := boundViper(t)
	require.NoError(t, cmd.PersistentFlags().Set("db", "/tmp/flag.db"))

	cfg, err := LoadConfig(v, "", "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/flag.db", cfg.DB)
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qdelay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_format: json\nverbose: true\n"), 0644))
	v, _ := boundViper(t)

	cfg, err := LoadConfig(v, path, "")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set, so start
	// from an empty value t.Setenv can restore.
	t.Setenv("QDELAY_FORMAT", "")
	require.NoError(t, os.Unsetenv("QDELAY_FORMAT"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QDELAY_FORMAT=json\n"), 0644))
	v, _ := boundViper(t)

	cfg, err := LoadConfig(v, "", path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoadConfig_MissingEnvFile(t *testing.T) {
	v, _ := boundViper(t)

	_, err := LoadConfig(v, "", filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load env file")
}

func TestConfigApply(t *testing.T) {
	cfg := &Config{Format: "json", Verbose: true, LogLevel: "info", LogFormat: "json", DB: "x.db"}
	opts := &RootOptions{}
	cfg.apply(opts)

	assert.Equal(t, "json", opts.Format)
	assert.True(t, opts.Verbose)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, "json", opts.LogFormat)
	assert.Equal(t, "x.db", opts.DB)
}
