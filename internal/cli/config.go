package cli

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "QDELAY"

// Config is the resolved CLI configuration.
// Precedence: flags, then QDELAY_* environment, then config file, then defaults.
type Config struct {
	Format    string `mapstructure:"format"`
	Verbose   bool   `mapstructure:"verbose"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	DB        string `mapstructure:"db"`
}

// configFlags maps config keys to persistent flag names.
var configFlags = map[string]string{
	"format":     "format",
	"verbose":    "verbose",
	"log_level":  "log-level",
	"log_format": "log-format",
	"db":         "db",
}

// bindFlags binds the persistent flags of root to v.
func bindFlags(v *viper.Viper, root *cobra.Command) {
	for key, flag := range configFlags {
		// Lookup cannot fail: the flags are declared just before binding.
		_ = v.BindPFlag(key, root.PersistentFlags().Lookup(flag))
	}
}

// LoadConfig resolves the configuration held by v. envFile, if set, is
// loaded into the process environment first; configFile, if set, must
// exist.
func LoadConfig(v *viper.Viper, configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// apply copies resolved settings onto the command options.
func (c *Config) apply(opts *RootOptions) {
	opts.Format = c.Format
	opts.Verbose = c.Verbose
	opts.LogLevel = c.LogLevel
	opts.LogFormat = c.LogFormat
	opts.DB = c.DB
}
