// Package app provides the application context and dependency management
// for the rollcall CLI. It centralizes configuration, logging and metrics,
// and hands them to commands through appcontext.Interface.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/rollcall/internal/appcontext"
	"github.com/agentstation/rollcall/internal/config"
	"github.com/agentstation/rollcall/internal/metrics"
	"github.com/agentstation/rollcall/pkg/errors"
)

// App represents the rollcall application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config
	viper  *viper.Viper

	// Logger
	logger *zerolog.Logger

	// Metrics (lazy-initialized, singleton)
	mu      sync.Mutex
	metrics *metrics.Metrics
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		viper:   viper.New(),
	}

	config, err := LoadConfig(app.viper)
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, or "" to auto-detect.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Viper returns the settings store that flags are bound to.
func (a *App) Viper() *viper.Viper {
	return a.viper
}

// RunConfig decodes the run configuration from the current settings.
func (a *App) RunConfig() (*config.Config, error) {
	return config.Load(a.viper)
}

// Metrics returns the process metrics, creating them on first use.
func (a *App) Metrics() *metrics.Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	return a.metrics
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Shutting down")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics instance (useful for testing).
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *App) error {
		a.metrics = m
		return nil
	}
}
