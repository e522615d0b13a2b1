package phase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/sosanalyzer/internal/config"
)

// ChainOption configures a chain.
type ChainOption func(*chainBase)

// WithLogger sets a custom logger for a chain.
func WithLogger(logger *slog.Logger) ChainOption {
	return func(c *chainBase) {
		c.logger = logger
	}
}

type chainBase struct {
	logger *slog.Logger
}

func newChainBase(opts []ChainOption) chainBase {
	c := chainBase{logger: slog.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// run executes fn for each member in order and stops at the first error,
// which is wrapped with the member's name.
func run[T any](ctx context.Context, c chainBase, kind string, members []T, fn func(T) error) error {
	for _, m := range members {
		name := NameOf(m)
		c.logger.Debug("running "+kind, kind, name)
		if err := fn(m); err != nil {
			c.logger.Error(kind+" failed", kind, name, "error", err)
			return fmt.Errorf("%s %s: %w", kind, name, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// ScannerChain runs scanners in order.
type ScannerChain struct {
	chainBase
	scanners []Scanner
}

// NewScannerChain creates a chain of scanners.
func NewScannerChain(scanners []Scanner, opts ...ChainOption) *ScannerChain {
	return &ScannerChain{chainBase: newChainBase(opts), scanners: scanners}
}

// Name returns "scanners".
func (c *ScannerChain) Name() string { return "scanners" }

// Len returns the number of scanners in the chain.
func (c *ScannerChain) Len() int { return len(c.scanners) }

// Scan runs every scanner.
func (c *ScannerChain) Scan(ctx context.Context, workdir, dataRoot string, conf config.Values) error {
	return run(ctx, c.chainBase, "scanner", c.scanners, func(s Scanner) error {
		return s.Scan(ctx, workdir, dataRoot, conf)
	})
}

// AnalyzerChain runs analyzers in order.
type AnalyzerChain struct {
	chainBase
	analyzers []Analyzer
}

// NewAnalyzerChain creates a chain of analyzers.
func NewAnalyzerChain(analyzers []Analyzer, opts ...ChainOption) *AnalyzerChain {
	return &AnalyzerChain{chainBase: newChainBase(opts), analyzers: analyzers}
}

// Name returns "analyzers".
func (c *AnalyzerChain) Name() string { return "analyzers" }

// Len returns the number of analyzers in the chain.
func (c *AnalyzerChain) Len() int { return len(c.analyzers) }

// Analyze runs every analyzer.
func (c *AnalyzerChain) Analyze(ctx context.Context, workdir, dataRoot string, conf config.Values) error {
	return run(ctx, c.chainBase, "analyzer", c.analyzers, func(a Analyzer) error {
		return a.Analyze(ctx, workdir, dataRoot, conf)
	})
}

// ReportChain runs report generators in order.
type ReportChain struct {
	chainBase
	generators []ReportGenerator
}

// NewReportChain creates a chain of report generators.
func NewReportChain(generators []ReportGenerator, opts ...ChainOption) *ReportChain {
	return &ReportChain{chainBase: newChainBase(opts), generators: generators}
}

// Name returns "reporters".
func (c *ReportChain) Name() string { return "reporters" }

// Len returns the number of generators in the chain.
func (c *ReportChain) Len() int { return len(c.generators) }

// Generate runs every report generator.
func (c *ReportChain) Generate(ctx context.Context, workdir, confPath string) error {
	return run(ctx, c.chainBase, "reporter", c.generators, func(g ReportGenerator) error {
		return g.Generate(ctx, workdir, confPath)
	})
}
