package analyze

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/nao1215/sosanalyzer/internal/config"
	"github.com/nao1215/sosanalyzer/internal/model"
	"github.com/nao1215/sosanalyzer/internal/workdir"
)

const (
	// RuleAnalyzerName is the name under which rule findings are stored.
	RuleAnalyzerName = "rules"

	defaultMaxMatches = 20
	maxLineBytes      = 1024 * 1024
	maxMatchRunes     = 256
)

// RuleAnalyzer matches line-oriented regular expression rules against
// bundle files.
type RuleAnalyzer struct {
	extra      []RawRule
	maxMatches int
	logger     *slog.Logger
}

// Option configures a RuleAnalyzer.
type Option func(*RuleAnalyzer)

// WithLogger sets a custom logger for the analyzer.
func WithLogger(logger *slog.Logger) Option {
	return func(a *RuleAnalyzer) {
		a.logger = logger
	}
}

// WithRules adds rules evaluated after the built-in ones.
func WithRules(rules ...RawRule) Option {
	return func(a *RuleAnalyzer) {
		a.extra = append(a.extra, rules...)
	}
}

// WithMaxMatches limits the findings one rule produces per file.
// The analyze.max_matches configuration key takes precedence.
func WithMaxMatches(n int) Option {
	return func(a *RuleAnalyzer) {
		a.maxMatches = n
	}
}

// NewRuleAnalyzer creates a RuleAnalyzer.
func NewRuleAnalyzer(opts ...Option) *RuleAnalyzer {
	a := &RuleAnalyzer{
		maxMatches: defaultMaxMatches,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns "rules".
func (a *RuleAnalyzer) Name() string { return RuleAnalyzerName }

// Analyze evaluates every rule and writes analyzed/rules.json.
//
// Rules come from, in order: the embedded rule set (unless
// analyze.disable_builtin_rules is true), WithRules, and analyze.rules.
// An invalid rule fails the analysis.
func (a *RuleAnalyzer) Analyze(ctx context.Context, wd, dataRoot string, conf config.Values) error {
	rules, err := a.rules(conf)
	if err != nil {
		return err
	}
	limit := conf.Int("analyze.max_matches", a.maxMatches)

	findings := make([]model.Finding, 0)
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, rel := range resolveFiles(dataRoot, rule.Files) {
			matches, err := a.matchFile(dataRoot, rel, rule, limit)
			if err != nil {
				a.logger.Warn("failed to read file", "rule", rule.ID, "file", rel, "error", err)
			}
			findings = append(findings, matches...)
		}
	}

	a.logger.Info("rule analysis complete", "rules", len(rules), "findings", len(findings))
	return workdir.WriteJSON(workdir.AnalyzedPath(wd, a.Name()), model.AnalyzerOutput{
		Analyzer: a.Name(),
		Findings: findings,
	})
}

func (a *RuleAnalyzer) rules(conf config.Values) ([]*Rule, error) {
	var raws []RawRule
	if !conf.Bool("analyze.disable_builtin_rules", false) {
		builtin, err := BuiltinRules()
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in rules: %w", err)
		}
		raws = append(raws, builtin...)
	}
	raws = append(raws, a.extra...)

	var user []RawRule
	if _, err := conf.Decode("analyze.rules", &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	raws = append(raws, user...)

	return CompileAll(raws)
}

// resolveFiles expands rule globs below dataRoot into sorted, unique,
// slash-separated relative paths of regular files.
func resolveFiles(dataRoot string, globs []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range globs {
		matches, err := filepath.Glob(filepath.Join(dataRoot, filepath.FromSlash(g)))
		if err != nil {
			continue
		}
		for _, m := range matches {
			info, err := os.Lstat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			rel, err := filepath.Rel(dataRoot, m)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if !seen[rel] {
				seen[rel] = true
				out = append(out, rel)
			}
		}
	}
	sort.Strings(out)
	return out
}

// matchFile returns up to limit findings for rule in the file rel.
// Files ending in .gz are decompressed.
func (a *RuleAnalyzer) matchFile(dataRoot, rel string, rule *Rule, limit int) ([]model.Finding, error) {
	f, err := os.Open(filepath.Join(dataRoot, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(rel, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []model.Finding
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if !rule.Pattern.MatchString(text) {
			continue
		}
		out = append(out, model.Finding{
			Rule:           rule.ID,
			Analyzer:       RuleAnalyzerName,
			Severity:       rule.Severity,
			Title:          rule.Title,
			Description:    rule.Description,
			Recommendation: rule.Recommendation,
			File:           rel,
			Line:           line,
			Match:          truncate(strings.TrimSpace(text), maxMatchRunes),
		})
		if limit > 0 && len(out) >= limit {
			a.logger.Debug("match limit reached", "rule", rule.ID, "file", rel, "limit", limit)
			break
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, bufio.ErrTooLong) {
		return out, err
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
