// Package constants provides shared constants used throughout shelfmark.
// This includes timeouts, pacing tiers, file permissions and the default
// locations for configuration and sync state.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the per-request timeout for library API calls
	DefaultHTTPTimeout = 15 * time.Second

	// SyncTimeout bounds a whole sync run started from the CLI
	SyncTimeout = 30 * time.Minute

	// StateLockTimeout is how long to wait for the state database lock
	StateLockTimeout = 1 * time.Second
)

// File permission constants
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like the state database (rw-------)
	SecureFilePermissions = 0600
)

// Paging constants
const (
	// DefaultPageSize is the number of records requested per page
	DefaultPageSize = 100

	// PacingSmallLibrary and friends are the total-record thresholds that
	// select an inter-page delay.
	PacingSmallLibrary  = 200
	PacingMediumLibrary = 500
	PacingLargeLibrary  = 1000

	// Inter-page delays for each pacing tier
	PacingDelayMedium = 500 * time.Millisecond
	PacingDelayLarge  = 1 * time.Second
	PacingDelayHuge   = 1500 * time.Millisecond
)

// PageDelay returns the pause between page fetches for a library of the
// given size.
func PageDelay(total int) time.Duration {
	switch {
	case total < PacingSmallLibrary:
		return 0
	case total < PacingMediumLibrary:
		return PacingDelayMedium
	case total < PacingLargeLibrary:
		return PacingDelayLarge
	default:
		return PacingDelayHuge
	}
}

// Path constants
const (
	// DefaultConfigFile is the config file name looked up in $HOME and the vault
	DefaultConfigFile = ".shelfmark.yaml"

	// StateDir is the vault-relative directory holding sync state
	StateDir = ".shelfmark"

	// StateFile is the bbolt database name inside StateDir
	StateFile = "state.db"
)

// Environment
const (
	// EnvPrefix is the prefix for environment overrides (SHELFMARK_API_KEY, ...)
	EnvPrefix = "SHELFMARK"
)

// Format constants
const (
	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"

	// DateFormat is the calendar date format used in note headers
	DateFormat = "2006-01-02"

	// TimestampFormat is the UTC millisecond timestamp written to group
	// headers and stored as the sync watermark
	TimestampFormat = "2006-01-02T15:04:05.000Z07:00"
)
