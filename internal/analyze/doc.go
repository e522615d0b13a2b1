// Package analyze provides the bundled analyze phase implementations.
//
// Each analyzer writes its findings to <workdir>/analyzed/<name>.json as a
// model.AnalyzerOutput. The result dump step merges those files.
//
//   - RuleAnalyzer matches regular expression rules against bundle files
//   - InventoryAnalyzer inspects the file inventory written by the scan phase
//   - SecretsAnalyzer looks for private keys and credentials in the bundle
package analyze

import (
	"log/slog"

	"github.com/nao1215/sosanalyzer/internal/phase"
)

// Default returns the bundled analyzers in execution order.
func Default(logger *slog.Logger) *phase.AnalyzerChain {
	return phase.NewAnalyzerChain([]phase.Analyzer{
		NewRuleAnalyzer(WithLogger(logger)),
		NewInventoryAnalyzer(WithInventoryLogger(logger)),
		NewSecretsAnalyzer(WithSecretsLogger(logger)),
	}, phase.WithLogger(logger))
}
