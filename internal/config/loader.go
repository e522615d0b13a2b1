package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfs loads and merges every configuration file named by spec.
//
// spec is the raw --conf value: a path, a glob pattern such as
// "/etc/sosanalyzer/*.yaml", or a comma-separated list of both. Files are
// merged in order with later files overriding earlier ones; nested mappings
// are merged key by key. An empty spec yields a nil Values and no error.
//
// YAML and JSON files are both accepted, since JSON is parsed as YAML.
func LoadConfs(spec string) (Values, error) {
	paths, err := ExpandConfPaths(spec)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}

	merged := Values{}
	for _, path := range paths {
		v, err := LoadConfFile(path)
		if err != nil {
			return nil, err
		}
		merged = MergeValues(merged, v)
	}
	return merged, nil
}

// ExpandConfPaths resolves spec into an ordered, duplicate-free list of files.
// Each element of spec that matches nothing yields ErrConfigNotFound.
func ExpandConfPaths(spec string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	for _, elem := range SplitConfSpec(spec) {
		var matches []string
		if hasGlobMeta(elem) {
			m, err := filepath.Glob(elem)
			if err != nil {
				return nil, fmt.Errorf("invalid configuration pattern %q: %w", elem, err)
			}
			sort.Strings(m)
			matches = m
		} else if _, err := os.Stat(elem); err == nil {
			matches = []string{elem}
		}

		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, elem)
		}

		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}

	return paths, nil
}

// SplitConfSpec splits a --conf value into its comma-separated elements.
// Blank elements are dropped.
func SplitConfSpec(spec string) []string {
	var out []string
	for _, elem := range strings.Split(spec, ",") {
		elem = strings.TrimSpace(elem)
		if elem != "" {
			out = append(out, elem)
		}
	}
	return out
}

// LoadConfFile loads a single YAML or JSON configuration file.
// An empty file yields an empty Values.
func LoadConfFile(path string) (Values, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Values{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	if len(node.Content) == 0 {
		return Values{}, nil
	}
	if node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, path)
	}

	var v Values
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode configuration file %s: %w", path, err)
	}
	if v == nil {
		v = Values{}
	}
	return v, nil
}

// MergeValues merges src into dst and returns dst.
// Nested mappings are merged recursively; any other value in src replaces
// the one in dst. A nil dst is allocated.
func MergeValues(dst, src Values) Values {
	if dst == nil {
		dst = Values{}
	}
	for k, sv := range src {
		srcMap, srcIsMap := asMap(sv)
		dstMap, dstIsMap := asMap(dst[k])
		if srcIsMap && dstIsMap {
			dst[k] = map[string]any(MergeValues(Values(dstMap), Values(srcMap)))
			continue
		}
		dst[k] = sv
	}
	return dst
}

// FindConfigFile searches for a configuration file when --conf is not given:
// 1. .sosanalyzer.yaml in the current directory
// 2. config.yaml in the XDG config directory (~/.config/sosanalyzer)
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile() string {
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), XDGConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[")
}
