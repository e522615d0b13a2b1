// Package report provides the bundled report phase implementation.
//
// Generator reads <workdir>/results.json and renders it with one Writer
// per configured format into <workdir>/report/:
//   - MarkdownWriter: report.md, for sharing in tickets and wikis
//   - SimpleWriter: report.txt, fixed-width tables for the terminal
//   - JSONWriter: report.json, for tool integration
//
// When report.publish.bucket is configured the generated files are also
// uploaded to an S3 compatible object store.
package report

import (
	"log/slog"

	"github.com/nao1215/sosanalyzer/internal/phase"
)

// Default returns the bundled report generators in execution order.
// version is recorded in JSON reports.
func Default(logger *slog.Logger, version string) *phase.ReportChain {
	return phase.NewReportChain([]phase.ReportGenerator{
		NewGenerator(WithLogger(logger), WithToolVersion(version)),
	}, phase.WithLogger(logger))
}
