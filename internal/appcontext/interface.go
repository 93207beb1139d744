// Package appcontext provides the shared application context interface
// used by all commands, so command packages depend on what they use rather
// than on the concrete App.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/rollcall/internal/config"
	"github.com/agentstation/rollcall/internal/metrics"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/rollcall/app implements it; tests use Mock.
type Interface interface {
	// RunConfig decodes and validates the run configuration from the config
	// file, ROLLCALL_* environment variables and bound flags.
	RunConfig() (*config.Config, error)

	// Metrics returns the metrics of the current process.
	Metrics() *metrics.Metrics

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
