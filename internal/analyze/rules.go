package analyze

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/sosanalyzer/internal/analyze/builtin"
	"github.com/nao1215/sosanalyzer/internal/model"
)

// RawRule is the YAML representation of a rule.
type RawRule struct {
	ID             string   `yaml:"id"`
	Title          string   `yaml:"title"`
	Severity       string   `yaml:"severity"`
	Files          []string `yaml:"files"`
	Pattern        string   `yaml:"pattern"`
	Description    string   `yaml:"description"`
	Recommendation string   `yaml:"recommendation"`
}

// ruleFile is the layout of a rule YAML file.
type ruleFile struct {
	Rules []RawRule `yaml:"rules"`
}

// Rule is a compiled rule ready for matching.
type Rule struct {
	ID             string
	Title          string
	Severity       model.Severity
	Files          []string
	Pattern        *regexp.Regexp
	Description    string
	Recommendation string
}

// Compile validates raw and compiles its pattern.
func Compile(raw RawRule) (*Rule, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidRule)
	}
	if raw.Pattern == "" {
		return nil, fmt.Errorf("%w: rule %s: missing pattern", ErrInvalidRule, raw.ID)
	}
	if len(raw.Files) == 0 {
		return nil, fmt.Errorf("%w: rule %s: no files", ErrInvalidRule, raw.ID)
	}
	for _, f := range raw.Files {
		if path.IsAbs(f) || strings.HasPrefix(path.Clean(f), "..") {
			return nil, fmt.Errorf("%w: rule %s: file %q must be relative to the data root", ErrInvalidRule, raw.ID, f)
		}
		if _, err := path.Match(f, ""); err != nil {
			return nil, fmt.Errorf("%w: rule %s: file %q: %v", ErrInvalidRule, raw.ID, f, err)
		}
	}

	sev, err := model.ParseSeverity(raw.Severity)
	if err != nil {
		return nil, fmt.Errorf("%w: rule %s: %v", ErrInvalidRule, raw.ID, err)
	}
	re, err := regexp.Compile(raw.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: rule %s: %v", ErrInvalidRule, raw.ID, err)
	}

	title := raw.Title
	if title == "" {
		title = raw.ID
	}
	return &Rule{
		ID:             raw.ID,
		Title:          title,
		Severity:       sev,
		Files:          raw.Files,
		Pattern:        re,
		Description:    raw.Description,
		Recommendation: raw.Recommendation,
	}, nil
}

// CompileAll compiles raws in order and rejects duplicate IDs.
func CompileAll(raws []RawRule) ([]*Rule, error) {
	rules := make([]*Rule, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for _, raw := range raws {
		if seen[raw.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, raw.ID)
		}
		r, err := Compile(raw)
		if err != nil {
			return nil, err
		}
		seen[raw.ID] = true
		rules = append(rules, r)
	}
	return rules, nil
}

// LoadFromFS reads every YAML rule file of fsys in lexical order.
func LoadFromFS(fsys fs.FS) ([]RawRule, error) {
	var names []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isYAML(p) {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var all []RawRule
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		var rf ruleFile
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		all = append(all, rf.Rules...)
	}
	return all, nil
}

// BuiltinRules returns the rules embedded in the binary.
func BuiltinRules() ([]RawRule, error) {
	return LoadFromFS(builtin.FS())
}

func isYAML(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".yaml" || ext == ".yml"
}
