package phase

import (
	"context"
	"fmt"

	"github.com/nao1215/sosanalyzer/internal/config"
)

// Scanner collects raw data from the bundle's data root into workdir.
type Scanner interface {
	Scan(ctx context.Context, workdir, dataRoot string, conf config.Values) error
}

// Analyzer derives findings from the data root and the scan output.
type Analyzer interface {
	Analyze(ctx context.Context, workdir, dataRoot string, conf config.Values) error
}

// Dumper persists the findings collected by the analyzers under workdir.
type Dumper interface {
	Dump(ctx context.Context, workdir string) error
}

// ReportGenerator renders reports from the dumped results.
//
// Unlike Scanner and Analyzer it receives the raw configuration path
// (the --conf value) instead of the parsed configuration, and loads what it
// needs itself. Report generation is often re-run later against an
// existing working directory, where only the path is at hand.
type ReportGenerator interface {
	Generate(ctx context.Context, workdir, confPath string) error
}

// Named is implemented by collaborators that have a name for logging.
type Named interface {
	Name() string
}

// NameOf returns v's name when it implements Named, or its type otherwise.
func NameOf(v any) string {
	if n, ok := v.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", v)
}

// ScannerFunc adapts an ordinary function to the Scanner interface.
type ScannerFunc func(ctx context.Context, workdir, dataRoot string, conf config.Values) error

// Scan calls f.
func (f ScannerFunc) Scan(ctx context.Context, workdir, dataRoot string, conf config.Values) error {
	return f(ctx, workdir, dataRoot, conf)
}

// AnalyzerFunc adapts an ordinary function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, workdir, dataRoot string, conf config.Values) error

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, workdir, dataRoot string, conf config.Values) error {
	return f(ctx, workdir, dataRoot, conf)
}

// DumperFunc adapts an ordinary function to the Dumper interface.
type DumperFunc func(ctx context.Context, workdir string) error

// Dump calls f.
func (f DumperFunc) Dump(ctx context.Context, workdir string) error {
	return f(ctx, workdir)
}

// ReportGeneratorFunc adapts an ordinary function to the ReportGenerator interface.
type ReportGeneratorFunc func(ctx context.Context, workdir, confPath string) error

// Generate calls f.
func (f ReportGeneratorFunc) Generate(ctx context.Context, workdir, confPath string) error {
	return f(ctx, workdir, confPath)
}

// Nop implements every phase contract and does nothing.
type Nop struct{}

// Name returns "nop".
func (Nop) Name() string { return "nop" }

// Scan does nothing.
func (Nop) Scan(context.Context, string, string, config.Values) error { return nil }

// Analyze does nothing.
func (Nop) Analyze(context.Context, string, string, config.Values) error { return nil }

// Dump does nothing.
func (Nop) Dump(context.Context, string) error { return nil }

// Generate does nothing.
func (Nop) Generate(context.Context, string, string) error { return nil }
