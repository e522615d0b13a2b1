package analyze

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/nao1215/sosanalyzer/internal/config"
	"github.com/nao1215/sosanalyzer/internal/model"
	"github.com/nao1215/sosanalyzer/internal/workdir"
)

const (
	// InventoryAnalyzerName is the name under which inventory findings are stored.
	InventoryAnalyzerName = "inventory"

	// DefaultLargeFileBytes is the size above which a file is reported.
	DefaultLargeFileBytes = 100 * 1024 * 1024

	commandsPrefix = "sos_commands/"
)

// InventoryAnalyzer reports unusual files from the scan inventory: files
// larger than analyze.large_file_bytes and command outputs that are empty.
type InventoryAnalyzer struct {
	logger *slog.Logger
}

// InventoryOption configures an InventoryAnalyzer.
type InventoryOption func(*InventoryAnalyzer)

// WithInventoryLogger sets a custom logger for the analyzer.
func WithInventoryLogger(logger *slog.Logger) InventoryOption {
	return func(a *InventoryAnalyzer) {
		a.logger = logger
	}
}

// NewInventoryAnalyzer creates an InventoryAnalyzer.
func NewInventoryAnalyzer(opts ...InventoryOption) *InventoryAnalyzer {
	a := &InventoryAnalyzer{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns "inventory".
func (a *InventoryAnalyzer) Name() string { return InventoryAnalyzerName }

// Analyze writes analyzed/inventory.json. A missing inventory yields no
// findings.
func (a *InventoryAnalyzer) Analyze(_ context.Context, wd, _ string, conf config.Values) error {
	findings := make([]model.Finding, 0)

	var inv model.Inventory
	err := workdir.ReadJSON(workdir.ScannedPath(wd, workdir.InventoryFile), &inv)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		a.logger.Debug("no inventory to analyze")
	case err != nil:
		return err
	default:
		limit := conf.Int64("analyze.large_file_bytes", DefaultLargeFileBytes)
		for _, f := range inv.Files {
			if limit > 0 && f.Size > limit {
				findings = append(findings, model.Finding{
					Rule:           "large-file",
					Analyzer:       InventoryAnalyzerName,
					Severity:       model.SeverityLow,
					Title:          "Large file in bundle",
					Description:    fmt.Sprintf("%s is %d bytes, above the %d byte threshold.", f.Path, f.Size, limit),
					Recommendation: "Check for runaway logging or rotation problems.",
					File:           f.Path,
				})
			}
			if f.Size == 0 && strings.Contains(f.Path, commandsPrefix) {
				findings = append(findings, model.Finding{
					Rule:        "empty-command-output",
					Analyzer:    InventoryAnalyzerName,
					Severity:    model.SeverityInfo,
					Title:       "Empty command output",
					Description: "The command produced no output when the bundle was collected.",
					File:        f.Path,
				})
			}
		}
	}

	a.logger.Info("inventory analysis complete", "findings", len(findings))
	return workdir.WriteJSON(workdir.AnalyzedPath(wd, a.Name()), model.AnalyzerOutput{
		Analyzer: a.Name(),
		Findings: findings,
	})
}
