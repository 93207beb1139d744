package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/rollcall/internal/config"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/logging"
)

// Config holds the CLI configuration: global flags, config file and logging.
// Run settings (sources, aliases, outputs) are decoded separately through
// internal/config from the same viper instance.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (bound by commands)
// 2. ROLLCALL_* environment variables
// 3. .env files
// 4. Config file (.rollcall.yaml in the working directory or $HOME)
// 5. Defaults
func LoadConfig(v *viper.Viper) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	config.SetDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	logCfg := logging.ConfigFromEnv()
	return &Config{
		Verbose:    v.GetBool("verbose"),
		Quiet:      v.GetBool("quiet"),
		NoColor:    v.GetBool("no-color"),
		Format:     v.GetString("format"),
		ConfigFile: v.GetString("config"),

		LogLevel:  os.Getenv(logging.EnvLevel),
		LogFormat: logCfg.Format,
		LogOutput: logCfg.Output,
	}, nil
}

// ReadConfigFile reads the config file named by --config, or searches the
// working directory and $HOME for .rollcall.yaml. A missing file is not an
// error unless it was named explicitly.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	v.SetConfigType("yaml")
	v.SetConfigName(constants.DefaultConfigName)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local does not override values already set by .env or the shell.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
