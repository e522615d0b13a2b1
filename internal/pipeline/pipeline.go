package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/sosanalyzer/internal/archive"
	"github.com/nao1215/sosanalyzer/internal/config"
	"github.com/nao1215/sosanalyzer/internal/locator"
	"github.com/nao1215/sosanalyzer/internal/phase"
	"github.com/nao1215/sosanalyzer/internal/workdir"
)

// WorkdirResolver prepares the working directory of a run.
// *workdir.Manager implements it.
type WorkdirResolver interface {
	Resolve(explicit string) (string, error)
	EnsureDataSubdir(workdir string) (string, error)
}

// Phases holds the collaborators invoked after the data root is found.
// Nil entries do nothing.
type Phases struct {
	Scanner  phase.Scanner
	Analyzer phase.Analyzer
	Dumper   phase.Dumper
	Reporter phase.ReportGenerator
}

// Result summarizes a successful run.
type Result struct {
	// WorkDir is the resolved working directory.
	WorkDir string
	// DataRoot is the directory containing the marker.
	DataRoot string
	// Extracted is false when an existing extraction was reused.
	Extracted bool
	// Analyzed reports whether the analyze phase and dump ran.
	Analyzed bool
	// Reported reports whether the report phase ran.
	Reported bool
}

// Orchestrator runs the pipeline for one archive.
type Orchestrator struct {
	phases    Phases
	workdirs  WorkdirResolver
	extractor archive.Extractor
	marker    string
	logger    *slog.Logger
	onState   func(State)
}

// Option is a function that configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithWorkdirManager replaces the default workdir manager.
func WithWorkdirManager(w WorkdirResolver) Option {
	return func(o *Orchestrator) {
		o.workdirs = w
	}
}

// WithExtractor replaces the default tar extractor.
func WithExtractor(e archive.Extractor) Option {
	return func(o *Orchestrator) {
		o.extractor = e
	}
}

// WithMarker changes the name whose presence identifies the data root.
func WithMarker(marker string) Option {
	return func(o *Orchestrator) {
		o.marker = marker
	}
}

// WithStateHook registers fn to be called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(o *Orchestrator) {
		o.onState = fn
	}
}

// New creates an Orchestrator for the given phases.
func New(phases Phases, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		phases: phases,
		marker: locator.DefaultMarker,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.workdirs == nil {
		o.workdirs = workdir.NewManager(workdir.WithLogger(o.logger))
	}
	if o.extractor == nil {
		o.extractor = archive.NewTarExtractor(archive.WithLogger(o.logger))
	}

	nop := phase.Nop{}
	if o.phases.Scanner == nil {
		o.phases.Scanner = nop
	}
	if o.phases.Analyzer == nil {
		o.phases.Analyzer = nop
	}
	if o.phases.Dumper == nil {
		o.phases.Dumper = nop
	}
	if o.phases.Reporter == nil {
		o.phases.Reporter = nop
	}
	return o
}

// Run executes the pipeline described by cfg.
//
// Errors from the workdir manager and the locator step are wrapped; errors
// from the extractor and the phases are returned as they are.
func (o *Orchestrator) Run(ctx context.Context, cfg *config.RunConfig) (*Result, error) {
	res, err := o.run(ctx, cfg)
	if err != nil {
		o.enter(StateFailed)
		return nil, err
	}
	o.enter(StateDone)
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, cfg *config.RunConfig) (*Result, error) {
	o.enter(StateInit)
	if cfg == nil || cfg.ArchivePath == "" {
		return nil, config.ErrNoArchive
	}

	o.enter(StateResolveWorkdir)
	wd, err := o.workdirs.Resolve(cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	dataDir, err := o.workdirs.EnsureDataSubdir(wd)
	if err != nil {
		return nil, err
	}
	o.logger.Info("using working directory", "workdir", wd)

	res := &Result{WorkDir: wd}

	o.enter(StateDetectExisting)
	dataRoot, found := locator.FindMarkerDir(dataDir, o.marker)
	if found {
		o.logger.Info("archive looks already extracted, skipping extraction",
			"data_root", dataRoot,
		)
	} else {
		o.enter(StateExtract)
		o.logger.Info("extracting archive", "archive", cfg.ArchivePath, "dest", dataDir)
		if err := o.extractor.Extract(ctx, cfg.ArchivePath, dataDir); err != nil {
			return nil, err
		}
		res.Extracted = true

		o.enter(StatePostExtractLocate)
		dataRoot, found = locator.FindMarkerDir(dataDir, o.marker)
		if !found {
			return nil, fmt.Errorf("%w: no %s directory under %s", ErrDataNotFound, o.marker, dataDir)
		}
	}
	res.DataRoot = dataRoot

	o.enter(StateScanReady)
	o.logger.Debug("data root located", "data_root", dataRoot)

	o.enter(StateScan)
	if err := o.phases.Scanner.Scan(ctx, wd, dataRoot, cfg.Conf); err != nil {
		return nil, err
	}

	if !cfg.Analyze {
		o.logger.Debug("analysis disabled")
		return res, nil
	}

	o.enter(StateAnalyze)
	if err := o.phases.Analyzer.Analyze(ctx, wd, dataRoot, cfg.Conf); err != nil {
		return nil, err
	}
	if err := o.phases.Dumper.Dump(ctx, wd); err != nil {
		return nil, err
	}
	res.Analyzed = true

	if !cfg.Report {
		return res, nil
	}

	o.enter(StateReport)
	if err := o.phases.Reporter.Generate(ctx, wd, cfg.ConfPath); err != nil {
		return nil, err
	}
	res.Reported = true

	return res, nil
}

func (o *Orchestrator) enter(s State) {
	o.logger.Debug("pipeline state", "state", s.String())
	if o.onState != nil {
		o.onState(s)
	}
}
