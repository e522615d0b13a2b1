package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/sosanalyzer/internal/analyze"
	"github.com/nao1215/sosanalyzer/internal/archive"
	"github.com/nao1215/sosanalyzer/internal/config"
	"github.com/nao1215/sosanalyzer/internal/log"
	"github.com/nao1215/sosanalyzer/internal/pipeline"
	"github.com/nao1215/sosanalyzer/internal/report"
	"github.com/nao1215/sosanalyzer/internal/results"
	"github.com/nao1215/sosanalyzer/internal/scan"
	"github.com/spf13/cobra"
)

// exitFailure is the status for every failed run.
const exitFailure = -1

// loggedError marks an error that was already written to the log.
type loggedError struct {
	err error
}

func (e *loggedError) Error() string { return e.err.Error() }
func (e *loggedError) Unwrap() error { return e.err }

// NewRootCmd creates the root command for sosanalyzer.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sosanalyzer [flags] ARCHIVE",
		Short: "Extract, scan and analyze sosreport support bundles",
		Long: `sosanalyzer unpacks a sosreport archive into a working directory and runs
the scan, analyze and report phases over the extracted data.

Re-running against the same working directory reuses the extracted data,
so analysis can be repeated without unpacking the archive again.

Examples:
  # Extract into a fresh temporary directory, scan and analyze
  sosanalyzer sosreport-host-2024.tar.xz

  # Reuse a working directory and generate reports
  sosanalyzer -w ./work --report sosreport-host-2024.tar.xz

  # Scan only, with configuration from several files
  sosanalyzer --no-analyze -C "base.yaml,conf.d/*.yaml" sosreport.tar.gz`,
		Args:          cobra.MaximumNArgs(1),
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	cmd.Flags().StringP("conf", "C", "",
		"Configuration file path, glob pattern, or comma-separated list of both")
	cmd.Flags().StringP("workdir", "w", "",
		"Working directory (default: a new temporary directory)")
	cmd.Flags().Bool("no-analyze", false, "Skip the analyze phase")
	cmd.Flags().Bool("report", false, "Generate reports after analysis")
	cmd.Flags().BoolP("silent", "s", false, "Only log errors")
	cmd.Flags().BoolP("quiet", "q", false, "Alias for --silent")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging (wins over --silent)")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command with the process arguments and returns the
// exit status.
func Execute() int {
	return execute(os.Args[1:], os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		var logged *loggedError
		if !errors.As(err, &logged) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return exitFailure
	}
	return 0
}

// runRootCmd executes one pipeline run.
func runRootCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return config.ErrNoArchive
	}

	cfg, err := buildRunConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbosity)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	orch := newOrchestrator(logger)
	res, err := orch.Run(ctx, cfg)
	if err != nil {
		logRunError(logger, cfg, err)
		return &loggedError{err: err}
	}

	logger.Info("run completed",
		"workdir", res.WorkDir,
		"data_root", res.DataRoot,
		"extracted", res.Extracted,
		"analyzed", res.Analyzed,
		"reported", res.Reported,
	)
	if cfg.Verbosity > config.VerbositySilent {
		fmt.Fprintln(cmd.OutOrStdout(), res.WorkDir)
	}
	return nil
}

// newOrchestrator wires the bundled phases.
func newOrchestrator(logger *slog.Logger) *pipeline.Orchestrator {
	return pipeline.New(pipeline.Phases{
		Scanner:  scan.Default(logger),
		Analyzer: analyze.Default(logger),
		Dumper:   results.NewCollector(results.WithLogger(logger)),
		Reporter: report.Default(logger, getVersion()),
	}, pipeline.WithLogger(logger))
}

// buildRunConfig builds the run configuration from flags.
func buildRunConfig(cmd *cobra.Command, archivePath string) (*config.RunConfig, error) {
	cfg := config.NewRunConfig()
	cfg.ArchivePath = archivePath

	var err error
	if cfg.WorkDir, err = cmd.Flags().GetString("workdir"); err != nil {
		return nil, err
	}

	noAnalyze, err := cmd.Flags().GetBool("no-analyze")
	if err != nil {
		return nil, err
	}
	cfg.Analyze = !noAnalyze

	if cfg.Report, err = cmd.Flags().GetBool("report"); err != nil {
		return nil, err
	}

	silent, err := cmd.Flags().GetBool("silent")
	if err != nil {
		return nil, err
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return nil, err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	cfg.Verbosity = verbosityFromFlags(silent || quiet, verbose)

	confSpec, err := cmd.Flags().GetString("conf")
	if err != nil {
		return nil, err
	}
	if confSpec == "" {
		confSpec = config.FindConfigFile()
	}
	cfg.ConfPath = confSpec

	if cfg.Conf, err = config.LoadConfs(confSpec); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// verbosityFromFlags maps the logging flags to a verbosity.
func verbosityFromFlags(silent, verbose bool) config.Verbosity {
	switch {
	case verbose:
		return config.VerbosityVerbose
	case silent:
		return config.VerbositySilent
	default:
		return config.VerbosityNormal
	}
}

// logRunError logs a failed run with a message matching its cause.
func logRunError(logger *slog.Logger, cfg *config.RunConfig, err error) {
	var extractErr *archive.ExtractionError
	switch {
	case errors.As(err, &extractErr):
		logger.Error("failed to extract archive", "archive", extractErr.Archive, "error", extractErr.Err)
	case errors.Is(err, pipeline.ErrDataNotFound):
		logger.Error("no sosreport data found", "archive", cfg.ArchivePath, "error", err)
	case errors.Is(err, context.Canceled):
		logger.Error("run interrupted", "error", err)
	default:
		logger.Error("pipeline failed", "error", err)
	}
}
