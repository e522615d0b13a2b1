package config

import "errors"

// Configuration errors.
// Validate and the loaders return these sentinels (possibly wrapped) so that
// callers can use errors.Is for programmatic handling.
var (
	// ErrNoArchive is returned when no support-bundle archive path was given.
	ErrNoArchive = errors.New("no support-bundle archive specified")

	// ErrReportWithoutAnalyze is returned when reporting is requested while
	// the analyze phase is disabled.
	ErrReportWithoutAnalyze = errors.New("--report cannot be used together with --no-analyze")

	// ErrInvalidVerbosity is returned for a verbosity outside the known range.
	ErrInvalidVerbosity = errors.New("invalid verbosity level")

	// ErrConfigNotFound is returned when a configuration path or pattern
	// does not match any file.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidConfig is returned when a configuration file does not
	// contain a mapping at the top level.
	ErrInvalidConfig = errors.New("configuration must be a mapping")
)
