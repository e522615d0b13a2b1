package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/sosanalyzer/internal/config"
	"github.com/nao1215/sosanalyzer/internal/model"
	"github.com/nao1215/sosanalyzer/internal/workdir"
)

// Generator is the default phase.ReportGenerator.
type Generator struct {
	logger    *slog.Logger
	version   string
	publisher Publisher
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets a custom logger for the generator.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithToolVersion sets the version recorded in JSON reports.
func WithToolVersion(version string) GeneratorOption {
	return func(g *Generator) {
		g.version = version
	}
}

// WithPublisher replaces the object store client built from report.publish.
func WithPublisher(p Publisher) GeneratorOption {
	return func(g *Generator) {
		g.publisher = p
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns "report".
func (g *Generator) Name() string { return "report" }

// Generate renders the results of wd into wd/report.
//
// confPath is the raw --conf value; it is loaded here with the same
// path, glob and list rules as the CLI uses. An empty confPath selects the
// defaults: a Markdown report and no publishing.
func (g *Generator) Generate(ctx context.Context, wd, confPath string) error {
	conf, err := config.LoadConfs(confPath)
	if err != nil {
		return fmt.Errorf("failed to load report configuration: %w", err)
	}

	resultsPath := filepath.Join(wd, workdir.ResultsFile)
	var results model.Results
	if err := workdir.ReadJSON(resultsPath, &results); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s is missing", ErrNoResults, resultsPath)
		}
		return err
	}

	formats, err := formatsFrom(conf)
	if err != nil {
		return err
	}

	dir := filepath.Join(wd, workdir.ReportDir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	written := make(map[Format]string, len(formats))
	for _, format := range formats {
		path := filepath.Join(dir, format.FileName())
		if err := g.writeFile(path, format, conf, &results); err != nil {
			return err
		}
		written[format] = path
		g.logger.Info("report written", "format", string(format), "path", path)
	}

	if pubCfg, ok := PublishConfigFromValues(conf); ok {
		if err := g.publish(ctx, pubCfg, results.RunID, formats, written); err != nil {
			return err
		}
	}
	return nil
}

func formatsFrom(conf config.Values) ([]Format, error) {
	names := conf.Strings("report.formats")
	if len(names) == 0 {
		return []Format{FormatMarkdown}, nil
	}

	var formats []Format
	seen := make(map[Format]bool, len(names))
	for _, entry := range names {
		for _, name := range strings.Split(entry, ",") {
			f, err := ParseFormat(name)
			if err != nil {
				return nil, err
			}
			if !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}
	return formats, nil
}

func (g *Generator) writeFile(path string, format Format, conf config.Values, results *model.Results) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if _, err := g.writerFor(format, f, conf).Write(results); err != nil {
		return fmt.Errorf("failed to write %s report: %w", format, err)
	}
	return nil
}

func (g *Generator) writerFor(format Format, out io.Writer, conf config.Values) Writer {
	title := conf.String("report.title", DefaultTitle)
	switch format {
	case FormatText:
		return NewSimpleWriter(out,
			WithTextTitle(title),
			WithVerbose(conf.Bool("report.verbose", false)),
		)
	case FormatJSON:
		return NewJSONWriter(out, WithJSONTitle(title), WithVersion(g.version), WithPrettyPrint())
	default:
		return NewMarkdownWriter(out, WithMarkdownTitle(title))
	}
}

func (g *Generator) publish(ctx context.Context, cfg PublishConfig, runID string, formats []Format, written map[Format]string) error {
	pub := g.publisher
	if pub == nil {
		mp, err := NewMinioPublisher(cfg)
		if err != nil {
			return err
		}
		if err := mp.EnsureBucket(ctx); err != nil {
			return err
		}
		pub = mp
	}

	for _, format := range formats {
		path := written[format]
		key := cfg.ObjectKey(runID, filepath.Base(path))
		if err := putFile(ctx, pub, key, path, format.ContentType()); err != nil {
			return err
		}
		g.logger.Info("report published", "bucket", cfg.Bucket, "key", key)
	}
	return nil
}

func putFile(ctx context.Context, pub Publisher, key, path, contentType string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return pub.Put(ctx, key, f, info.Size(), contentType)
}
