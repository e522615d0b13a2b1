package workdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Artifact locations inside a working directory.
const (
	// ScannedDir holds the scan phase output.
	ScannedDir = "scanned"
	// AnalyzedDir holds one JSON file per analyzer.
	AnalyzedDir = "analyzed"
	// ReportDir holds the generated reports.
	ReportDir = "report"
	// ResultsFile is the merged result dump.
	ResultsFile = "results.json"
	// ResultsDB is the SQLite copy of the result dump.
	ResultsDB = "results.db"
	// InventoryFile is the file inventory written by the scan phase.
	InventoryFile = "inventory.json"
	// FactsFile is the host facts written by the scan phase.
	FactsFile = "facts.json"
)

const filePerm = 0600

// ScannedPath returns the path of name inside the scan output directory.
func ScannedPath(workdir, name string) string {
	return filepath.Join(workdir, ScannedDir, name)
}

// AnalyzedPath returns the output path of the named analyzer.
func AnalyzedPath(workdir, analyzer string) string {
	return filepath.Join(workdir, AnalyzedDir, analyzer+".json")
}

// WriteJSON writes v as indented JSON to path, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// RemoveArtifact deletes a phase output left by an earlier run.
// A missing file is not an error.
func RemoveArtifact(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stale %s: %w", path, err)
	}
	return nil
}

// ReadJSON decodes the JSON file at path into v.
// Errors wrap the underlying error, so fs.ErrNotExist can be tested.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
