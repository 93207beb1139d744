// Package constants provides shared constants used throughout the rollcall codebase.
// This includes file permissions, canonical-key and currency defaults, and the
// Lok Sabha term arithmetic that the description synthesis relies on.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Canonical key constants
const (
	// KeySeparator joins the canonical name and region of a composite key.
	// It must never survive canonicalization, which keeps only letters and spaces.
	KeySeparator = ":"
)

// Currency constants
const (
	// CroreRatio is the number of base units (rupees) in one major unit (crore).
	CroreRatio = 10_000_000

	// AmountPrecision is the number of decimals kept when converting to major units.
	AmountPrecision = 2
)

// Lok Sabha term constants
const (
	// LatestTerm is the number of the sitting Lok Sabha.
	LatestTerm = 18

	// LatestTermStartYear is the year the latest term began.
	LatestTermStartYear = 2024

	// TermLengthYears is the length of a full Lok Sabha term.
	TermLengthYears = 5
)

// Default values
const (
	// DefaultConfigName is the base name of the config file searched for in $HOME and ".".
	DefaultConfigName = ".rollcall"

	// EnvPrefix prefixes environment variables read through viper.
	EnvPrefix = "ROLLCALL"

	// DefaultMergedOutput is the default merged CSV path.
	DefaultMergedOutput = "combined_myneta_sansad.csv"
)

// Timeout constants
const (
	// CommandTimeout bounds a merge run
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds graceful shutdown after a failed command
	ShutdownTimeout = 5 * time.Second
)

// Format constants
const (
	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339
)
