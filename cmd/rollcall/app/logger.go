package app

import (
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"

	"github.com/agentstation/rollcall/pkg/logging"
)

// NewLogger creates a configured logger based on the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag or ROLLCALL_LOG_LEVEL
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	// ROLLCALL_LOG_CALLER, ROLLCALL_LOG_FIELDS and the time format come from the environment
	cfg := logging.ConfigFromEnv()
	cfg.Level = level
	cfg.Format = config.LogFormat
	cfg.Output = config.LogOutput
	cfg.NoColor = cfg.NoColor || config.NoColor
	cfg.AddCaller = cfg.AddCaller || level == "debug" || level == "trace"
	return logging.NewLoggerFromConfig(cfg)
}

// determineLogLevel determines the log level using the precedence rules.
func determineLogLevel(config *Config) string {
	if config.LogLevel != "" {
		validated := validateLogLevel(config.LogLevel)
		if validated != config.LogLevel {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", config.LogLevel, validated)
		}
		return validated
	}

	if config.Verbose && config.Quiet {
		// quiet is the more restrictive
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "warn"
	}
	return "info"
}

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// validateLogLevel returns level if valid, otherwise "info".
func validateLogLevel(level string) string {
	if slices.Contains(validLogLevels, level) {
		return level
	}
	return "info"
}
