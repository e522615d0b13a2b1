package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/sosanalyzer/internal/config"
	"github.com/nao1215/sosanalyzer/internal/workdir"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePublisher records uploads.
type fakePublisher struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	err     error
}

func (p *fakePublisher) Put(_ context.Context, key string, body io.Reader, size int64, contentType string) error {
	if p.err != nil {
		return p.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.objects == nil {
		p.objects = map[string]string{}
		p.types = map[string]string{}
	}
	p.objects[key] = string(data)
	p.types[key] = contentType
	return nil
}

func (p *fakePublisher) keys() []string {
	keys := make([]string, 0, len(p.objects))
	for k := range p.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func workdirWithResults(t *testing.T) string {
	t.Helper()
	wd := t.TempDir()
	if err := workdir.WriteJSON(filepath.Join(wd, workdir.ResultsFile), createTestResults()); err != nil {
		t.Fatal(err)
	}
	return wd
}

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sosanalyzer.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestGenerator tests report generation from dumped results.
func TestGenerator(t *testing.T) {
	t.Parallel()

	t.Run("markdown by default", func(t *testing.T) {
		t.Parallel()

		wd := workdirWithResults(t)
		if err := NewGenerator(WithLogger(quietLogger())).Generate(context.Background(), wd, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries, err := os.ReadDir(filepath.Join(wd, workdir.ReportDir))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Name() != "report.md" {
			t.Fatalf("unexpected report files %v", entries)
		}
		data, err := os.ReadFile(filepath.Join(wd, workdir.ReportDir, "report.md"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "# "+DefaultTitle) {
			t.Error("expected default title")
		}
	})

	t.Run("formats and title from conf path", func(t *testing.T) {
		t.Parallel()

		wd := workdirWithResults(t)
		conf := writeConf(t, "report:\n  title: Case 0042\n  formats: [text, json, md, text]\n")

		g := NewGenerator(WithLogger(quietLogger()), WithToolVersion("v9.9.9"))
		if err := g.Generate(context.Background(), wd, conf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, name := range []string{"report.txt", "report.json", "report.md"} {
			data, err := os.ReadFile(filepath.Join(wd, workdir.ReportDir, name))
			if err != nil {
				t.Fatalf("expected %s: %v", name, err)
			}
			if !strings.Contains(strings.ToLower(string(data)), "case 0042") {
				t.Errorf("expected title in %s", name)
			}
		}
		data, err := os.ReadFile(filepath.Join(wd, workdir.ReportDir, "report.json"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"version": "v9.9.9"`) {
			t.Error("expected tool version in JSON report")
		}
	})

	t.Run("comma separated formats", func(t *testing.T) {
		t.Parallel()

		wd := workdirWithResults(t)
		conf := writeConf(t, "report:\n  formats: json,text\n")
		if err := NewGenerator(WithLogger(quietLogger())).Generate(context.Background(), wd, conf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range []string{"report.json", "report.txt"} {
			if _, err := os.Stat(filepath.Join(wd, workdir.ReportDir, name)); err != nil {
				t.Errorf("expected %s: %v", name, err)
			}
		}
	})

	t.Run("missing results", func(t *testing.T) {
		t.Parallel()

		err := NewGenerator(WithLogger(quietLogger())).Generate(context.Background(), t.TempDir(), "")
		if !errors.Is(err, ErrNoResults) {
			t.Errorf("expected ErrNoResults, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		conf := writeConf(t, "report:\n  formats: [pdf]\n")
		err := NewGenerator(WithLogger(quietLogger())).Generate(context.Background(), workdirWithResults(t), conf)
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})

	t.Run("missing conf path", func(t *testing.T) {
		t.Parallel()

		err := NewGenerator(WithLogger(quietLogger())).Generate(context.Background(), workdirWithResults(t), filepath.Join(t.TempDir(), "none.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

// TestGeneratorPublish tests uploading generated reports.
func TestGeneratorPublish(t *testing.T) {
	t.Parallel()

	t.Run("uploads every generated file", func(t *testing.T) {
		t.Parallel()

		wd := workdirWithResults(t)
		conf := writeConf(t, `report:
  formats: [markdown, json]
  publish:
    endpoint: s3.example.com
    bucket: support-cases
    prefix: /case-0042/
`)
		pub := &fakePublisher{}
		g := NewGenerator(WithLogger(quietLogger()), WithPublisher(pub))
		if err := g.Generate(context.Background(), wd, conf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		runID := createTestResults().RunID
		want := []string{
			"case-0042/" + runID + "/report.json",
			"case-0042/" + runID + "/report.md",
		}
		if diff := cmp.Diff(want, pub.keys()); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
		if got := pub.types[want[0]]; got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
	})

	t.Run("upload failure is returned", func(t *testing.T) {
		t.Parallel()

		conf := writeConf(t, "report:\n  publish:\n    endpoint: s3.example.com\n    bucket: b\n")
		g := NewGenerator(WithLogger(quietLogger()), WithPublisher(&fakePublisher{err: errors.New("denied")}))
		if err := g.Generate(context.Background(), workdirWithResults(t), conf); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("invalid publish config without a publisher", func(t *testing.T) {
		t.Parallel()

		conf := writeConf(t, "report:\n  publish:\n    endpoint: https://s3.example.com\n    bucket: b\n")
		err := NewGenerator(WithLogger(quietLogger())).Generate(context.Background(), workdirWithResults(t), conf)
		if !errors.Is(err, ErrInvalidPublishConfig) {
			t.Errorf("expected ErrInvalidPublishConfig, got %v", err)
		}
	})
}

// TestPublishConfig tests report.publish parsing.
func TestPublishConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, ok := PublishConfigFromValues(config.Values{"report": map[string]any{
			"publish": map[string]any{"endpoint": "minio:9000", "bucket": "reports"},
		}})
		if !ok {
			t.Fatal("expected publishing to be enabled")
		}
		want := PublishConfig{Endpoint: "minio:9000", Bucket: "reports", Region: "us-east-1", Prefix: "sosanalyzer", UseSSL: true}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
		if got := cfg.ObjectKey("run", "report.md"); got != "sosanalyzer/run/report.md" {
			t.Errorf("unexpected key %q", got)
		}
	})

	t.Run("disabled without bucket", func(t *testing.T) {
		t.Parallel()

		if _, ok := PublishConfigFromValues(nil); ok {
			t.Error("expected publishing to be disabled")
		}
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			cfg  PublishConfig
		}{
			{name: "no endpoint", cfg: PublishConfig{Bucket: "b"}},
			{name: "scheme", cfg: PublishConfig{Endpoint: "http://x", Bucket: "b"}},
			{name: "no bucket", cfg: PublishConfig{Endpoint: "x"}},
			{name: "half credentials", cfg: PublishConfig{Endpoint: "x", Bucket: "b", AccessKey: "a"}},
		}
		for _, tt := range tests {
			if err := tt.cfg.Validate(); !errors.Is(err, ErrInvalidPublishConfig) {
				t.Errorf("%s: expected ErrInvalidPublishConfig, got %v", tt.name, err)
			}
		}
		if err := (PublishConfig{Endpoint: "x", Bucket: "b"}).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("empty prefix", func(t *testing.T) {
		t.Parallel()

		if got := (PublishConfig{}).ObjectKey("run", "report.md"); got != "run/report.md" {
			t.Errorf("unexpected key %q", got)
		}
	})
}

// TestDefault tests the bundled report chain.
func TestDefault(t *testing.T) {
	t.Parallel()

	chain := Default(quietLogger(), "v1.2.3")
	if chain.Len() != 1 {
		t.Fatalf("expected 1 report generator, got %d", chain.Len())
	}

	wd := workdirWithResults(t)
	conf := writeConf(t, "report:\n  formats: [json]\n")
	if err := chain.Generate(context.Background(), wd, conf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(wd, workdir.ReportDir, "report.json"))
	if err != nil {
		t.Fatalf("expected report.json: %v", err)
	}
	if !strings.Contains(string(data), `"version": "v1.2.3"`) {
		t.Error("expected tool version in JSON report")
	}
}
