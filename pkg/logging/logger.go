// Package logging provides structured logging for rollcall using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("source", "sansad").Int("records", 543).Msg("Loaded source")
//
//	ctx := logging.WithRunID(context.Background(), runID)
//	ctx = logging.WithSource(ctx, "myneta")
//	logging.FromContext(ctx).Debug().Msg("Building join index")
package logging

import (
	"io"
	"os"
	"time"

	goisatty "github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment variables read when the default logger is created.
const (
	EnvLevel  = "ROLLCALL_LOG_LEVEL"
	EnvFormat = "ROLLCALL_LOG_FORMAT"
	EnvOutput = "ROLLCALL_LOG_OUTPUT"
	EnvCaller = "ROLLCALL_LOG_CALLER"
	EnvFields = "ROLLCALL_LOG_FIELDS"
)

// defaultLogger is the global logger instance.
var defaultLogger zerolog.Logger

func init() {
	// Initialize with sensible defaults
	defaultLogger = createDefaultLogger()
}

// createDefaultLogger creates a logger with default settings.
func createDefaultLogger() zerolog.Logger {
	var writer io.Writer = os.Stderr

	if isatty(os.Stderr) && os.Getenv(EnvFormat) != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := getLogLevel()
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger // Also update zerolog's global logger
}

// New creates a new JSON logger writing to w.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// NewJSON creates a new JSON logger for structured output.
func NewJSON(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return New(w)
}

// With creates a child logger with additional context fields.
func With() zerolog.Context {
	return defaultLogger.With()
}

// Debug starts a new debug level log event.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts a new info level log event.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a new warning level log event.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error starts a new error level log event.
func Error() *zerolog.Event {
	return defaultLogger.Error()
}

// Err creates a new error log event with the given error.
func Err(err error) *zerolog.Event {
	return defaultLogger.Err(err)
}

// isatty reports whether w is a terminal.
func isatty(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return goisatty.IsTerminal(f.Fd()) || goisatty.IsCygwinTerminal(f.Fd())
}

// getLogLevel returns the log level from the environment, info by default.
func getLogLevel() zerolog.Level {
	raw := os.Getenv(EnvLevel)
	if raw == "" {
		if os.Getenv("DEBUG") != "" {
			return zerolog.DebugLevel
		}
		return zerolog.InfoLevel
	}
	return parseLevel(raw)
}
