// Package workdir manages the working directory of a pipeline run.
//
// A working directory holds the extracted bundle under a fixed data
// subdirectory plus every artifact written by the scan, analyze and report
// phases. It is created once per run, reused when it already exists, and
// never removed, so later report runs can inspect it.
package workdir

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/sosanalyzer/internal/config"
)

// DataSubdir is the name of the subdirectory the archive is extracted into.
const DataSubdir = "data"

// dirPerm is used for every directory created by the manager.
const dirPerm = 0750

// Manager creates and validates working directories.
type Manager struct {
	baseDir string
	prefix  string
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithBaseDir sets the parent directory of generated working directories.
// Defaults to os.TempDir().
func WithBaseDir(dir string) Option {
	return func(m *Manager) {
		m.baseDir = dir
	}
}

// WithPrefix sets the name prefix of generated working directories.
func WithPrefix(prefix string) Option {
	return func(m *Manager) {
		m.prefix = prefix
	}
}

// WithLogger sets a custom logger for the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		prefix: config.DefaultWorkdirPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.baseDir == "" {
		m.baseDir = os.TempDir()
	}
	return m
}

// Resolve returns a usable working directory.
// A non-empty explicit path is created if missing and returned as is; an
// empty one makes Resolve generate a fresh, uniquely named directory under
// the base directory.
func (m *Manager) Resolve(explicit string) (string, error) {
	if explicit != "" {
		if err := os.MkdirAll(explicit, dirPerm); err != nil {
			return "", fmt.Errorf("failed to create working directory %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if err := os.MkdirAll(m.baseDir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create base directory %s: %w", m.baseDir, err)
	}
	dir, err := os.MkdirTemp(m.baseDir, m.prefix)
	if err != nil {
		return "", fmt.Errorf("failed to create working directory under %s: %w", m.baseDir, err)
	}
	m.logger.Info("created working directory", "workdir", dir)
	return dir, nil
}

// EnsureDataSubdir returns the data subdirectory of workdir, creating it
// when absent. Calling it again for the same workdir is a no-op.
func (m *Manager) EnsureDataSubdir(workdir string) (string, error) {
	dataDir := DataDir(workdir)
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		m.logger.Info("creating data directory", "datadir", dataDir)
	}
	if err := os.MkdirAll(dataDir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return dataDir, nil
}

// DataDir returns the data subdirectory path of workdir without creating it.
func DataDir(workdir string) string {
	return filepath.Join(workdir, DataSubdir)
}
