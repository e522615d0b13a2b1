// Package results implements the result dump step of the analyze phase.
//
// The Collector merges the per-analyzer outputs under <workdir>/analyzed/
// with the scanned host facts into a single model.Results, writes it to
// <workdir>/results.json and records it in the working directory's SQLite
// database.
package results

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/sosanalyzer/internal/database"
	"github.com/nao1215/sosanalyzer/internal/model"
	"github.com/nao1215/sosanalyzer/internal/workdir"
)

// Collector is the default phase.Dumper.
type Collector struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	skipDB bool
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets a custom logger for the collector.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithClock sets the function used to stamp results.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// WithoutDatabase disables writing results.db.
func WithoutDatabase() Option {
	return func(c *Collector) {
		c.skipDB = true
	}
}

// NewCollector creates a Collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		logger: slog.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns "results".
func (c *Collector) Name() string { return "results" }

// Dump merges analyzer outputs and facts of wd into results.json and
// results.db.
func (c *Collector) Dump(ctx context.Context, wd string) error {
	res, err := c.Collect(wd)
	if err != nil {
		return err
	}

	if err := workdir.WriteJSON(filepath.Join(wd, workdir.ResultsFile), res); err != nil {
		return err
	}

	if !c.skipDB {
		if err := saveToDB(ctx, wd, res); err != nil {
			return err
		}
	}

	c.logger.Info("results dumped",
		"run_id", res.RunID,
		"findings", res.TotalFindings(),
		"critical", res.Count(model.SeverityCritical),
		"high", res.Count(model.SeverityHigh),
	)
	return nil
}

// Collect reads the analyzer outputs and facts of wd without writing anything.
func (c *Collector) Collect(wd string) (*model.Results, error) {
	res := &model.Results{
		RunID:       c.newID(),
		WorkDir:     wd,
		GeneratedAt: c.now().UTC(),
		Findings:    make([]model.Finding, 0),
	}

	paths, err := filepath.Glob(filepath.Join(wd, workdir.AnalyzedDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list analyzer outputs: %w", err)
	}
	sort.Strings(paths)
	for _, p := range paths {
		var out model.AnalyzerOutput
		if err := workdir.ReadJSON(p, &out); err != nil {
			return nil, err
		}
		if out.Analyzer == "" {
			out.Analyzer = strings.TrimSuffix(filepath.Base(p), ".json")
		}
		res.Analyzers = append(res.Analyzers, out.Analyzer)
		res.Findings = append(res.Findings, out.Findings...)
	}
	res.SortFindings()

	err = workdir.ReadJSON(workdir.ScannedPath(wd, workdir.FactsFile), &res.Facts)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c.logger.Debug("no facts to collect")
	case err != nil:
		return nil, err
	}
	if host, ok := res.Fact("hostname"); ok {
		res.Host = host
	}

	return res, nil
}

func saveToDB(ctx context.Context, wd string, res *model.Results) error {
	db, err := database.Open(wd, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	return db.SaveResults(ctx, res)
}
