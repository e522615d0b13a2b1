package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/sosanalyzer/internal/config"
	"github.com/nao1215/sosanalyzer/internal/model"
	"github.com/nao1215/sosanalyzer/internal/workdir"
)

// FactPackageCount is the fact holding the number of installed packages.
// Its value is the line count of its source file rather than the first line.
const FactPackageCount = "package_count"

// factSource maps a fact name to the bundle file it is read from.
type factSource struct {
	name string
	path string
}

// defaultFacts lists the facts collected when scan.facts does not override them.
var defaultFacts = []factSource{
	{name: "hostname", path: "hostname"},
	{name: "kernel", path: "uname"},
	{name: "release", path: "etc/redhat-release"},
	{name: "uptime", path: "uptime"},
	{name: "date", path: "date"},
	{name: FactPackageCount, path: "installed-rpms"},
}

// FactScanner reads host facts from well-known bundle files.
type FactScanner struct {
	logger *slog.Logger
}

// FactOption configures a FactScanner.
type FactOption func(*FactScanner)

// WithFactLogger sets a custom logger for the scanner.
func WithFactLogger(logger *slog.Logger) FactOption {
	return func(s *FactScanner) {
		s.logger = logger
	}
}

// NewFactScanner creates a FactScanner.
func NewFactScanner(opts ...FactOption) *FactScanner {
	s := &FactScanner{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "facts".
func (s *FactScanner) Name() string { return "facts" }

// Scan writes scanned/facts.json. Facts whose source file is missing or
// empty are omitted.
//
// The scan.facts configuration key maps fact names to bundle paths; it
// overrides the path of a default fact or adds a new one.
func (s *FactScanner) Scan(_ context.Context, wd, dataRoot string, conf config.Values) error {
	facts := make([]model.Fact, 0, len(defaultFacts))
	for _, src := range factSources(conf) {
		value, err := readFact(dataRoot, src)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Debug("fact source missing", "fact", src.name, "path", src.path)
				continue
			}
			return err
		}
		if value == "" {
			continue
		}
		facts = append(facts, model.Fact{Name: src.name, Value: value, Source: src.path})
	}

	s.logger.Info("facts collected", "count", len(facts))
	return workdir.WriteJSON(workdir.ScannedPath(wd, workdir.FactsFile), facts)
}

func factSources(conf config.Values) []factSource {
	overrides := conf.StringMap("scan.facts")

	sources := make([]factSource, 0, len(defaultFacts)+len(overrides))
	seen := make(map[string]bool, len(defaultFacts))
	for _, src := range defaultFacts {
		if p, ok := overrides[src.name]; ok {
			src.path = p
		}
		seen[src.name] = true
		sources = append(sources, src)
	}

	extra := make([]string, 0, len(overrides))
	for name := range overrides {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		sources = append(sources, factSource{name: name, path: overrides[name]})
	}
	return sources
}

func readFact(dataRoot string, src factSource) (string, error) {
	path := filepath.Join(dataRoot, filepath.FromSlash(src.path))
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if src.name == FactPackageCount {
		n := 0
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("failed to read %s: %w", src.path, err)
		}
		if n == 0 {
			return "", nil
		}
		return strconv.Itoa(n), nil
	}

	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", src.path, err)
	}
	return "", nil
}
