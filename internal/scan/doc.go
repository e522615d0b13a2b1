// Package scan provides the bundled scan phase implementations.
//
// Scanners read the extracted bundle below the data root and write their
// output under <workdir>/scanned/ for the analyzers to consume:
//
//   - FactScanner collects single-line host facts (hostname, kernel, ...)
//   - InventoryScanner records every regular file with its size and digest
//
// Default returns both as a sequential chain.
package scan

import (
	"log/slog"

	"github.com/nao1215/sosanalyzer/internal/phase"
)

// Default returns the bundled scanners in execution order.
func Default(logger *slog.Logger) *phase.ScannerChain {
	return phase.NewScannerChain([]phase.Scanner{
		NewFactScanner(WithFactLogger(logger)),
		NewInventoryScanner(WithLogger(logger)),
	}, phase.WithLogger(logger))
}
