package config

import (
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sosanalyzer"

	// DefaultConfigFile is the configuration file searched for in the
	// current directory when --conf is not given.
	DefaultConfigFile = ".sosanalyzer.yaml"

	// XDGConfigFile is the configuration file name searched for in the
	// XDG config directory when --conf is not given.
	XDGConfigFile = "config.yaml"

	// DefaultWorkdirPrefix prefixes automatically generated working directories.
	DefaultWorkdirPrefix = "sosanalyzer-workdir-"
)

// Verbosity is the output verbosity requested on the command line.
// Values are ordered: VerbositySilent < VerbosityNormal < VerbosityVerbose.
type Verbosity int

const (
	// VerbositySilent only reports errors.
	VerbositySilent Verbosity = iota

	// VerbosityNormal reports progress of the pipeline. This is the default.
	VerbosityNormal

	// VerbosityVerbose adds debug output from every component.
	VerbosityVerbose
)

// String returns the verbosity name.
func (v Verbosity) String() string {
	switch v {
	case VerbositySilent:
		return "silent"
	case VerbosityNormal:
		return "normal"
	case VerbosityVerbose:
		return "verbose"
	default:
		return "unknown"
	}
}

// Level maps the verbosity onto an slog level.
func (v Verbosity) Level() slog.Level {
	switch {
	case v <= VerbositySilent:
		return slog.LevelError
	case v >= VerbosityVerbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// RunConfig holds everything one pipeline run needs.
// It is populated once from CLI flags and passed explicitly to the
// orchestrator; nothing reads process-wide state after that.
type RunConfig struct {
	// ArchivePath is the support-bundle archive to analyze. Required.
	ArchivePath string

	// WorkDir is the working directory. When empty, a fresh directory is
	// generated under the system temporary directory.
	WorkDir string

	// ConfPath is the raw --conf value: a path, a glob pattern, or a
	// comma-separated list of both. It is kept verbatim because the report
	// phase receives the path rather than the parsed Conf.
	ConfPath string

	// Conf is the configuration object loaded from ConfPath.
	// It may be nil when no configuration was given.
	Conf Values

	// Verbosity controls log output only; it never changes pipeline logic.
	Verbosity Verbosity

	// Analyze enables the analyze phase and the result dump that follows it.
	Analyze bool

	// Report enables the report phase. It requires Analyze.
	Report bool
}

// NewRunConfig creates a RunConfig with default values:
// analysis enabled, reporting disabled, normal verbosity.
func NewRunConfig() *RunConfig {
	return &RunConfig{
		Verbosity: VerbosityNormal,
		Analyze:   true,
		Report:    false,
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors in
// errors.go so callers can use errors.Is.
func (c *RunConfig) Validate() error {
	if c.ArchivePath == "" {
		return ErrNoArchive
	}

	// The report phase consumes the dumped analysis results.
	if c.Report && !c.Analyze {
		return ErrReportWithoutAnalyze
	}

	if c.Verbosity < VerbositySilent || c.Verbosity > VerbosityVerbose {
		return ErrInvalidVerbosity
	}

	return nil
}

// XDGConfigDir returns the XDG config directory for sosanalyzer.
// On Linux: ~/.config/sosanalyzer
// On macOS: ~/Library/Application Support/sosanalyzer
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
