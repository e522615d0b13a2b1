package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Values is the configuration object passed to every phase.
//
// It is a string-keyed mapping with heterogeneous values as decoded from
// YAML or JSON. The orchestrator never inspects it; each phase reads the
// keys it understands. Lookups accept dotted paths ("report.title") and a
// nil Values behaves like an empty one.
type Values map[string]any

// Lookup returns the value at the dotted key path.
func (v Values) Lookup(key string) (any, bool) {
	if v == nil || key == "" {
		return nil, false
	}

	var cur any = map[string]any(v)
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Section returns the mapping at key, or nil when absent or not a mapping.
func (v Values) Section(key string) Values {
	raw, ok := v.Lookup(key)
	if !ok {
		return nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil
	}
	return Values(m)
}

// String returns the value at key formatted as a string, or def.
func (v Values) String(key, def string) string {
	raw, ok := v.Lookup(key)
	if !ok || raw == nil {
		return def
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

// Int returns the integer at key, or def when absent or not numeric.
func (v Values) Int(key string, def int) int {
	n, ok := v.int64(key)
	if !ok {
		return def
	}
	return int(n)
}

// Int64 returns the integer at key, or def when absent or not numeric.
func (v Values) Int64(key string, def int64) int64 {
	n, ok := v.int64(key)
	if !ok {
		return def
	}
	return n
}

func (v Values) int64(key string) (int64, bool) {
	raw, ok := v.Lookup(key)
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true //nolint:gosec // configuration values are small
	case float64:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Bool returns the boolean at key, or def when absent or not a boolean.
func (v Values) Bool(key string, def bool) bool {
	raw, ok := v.Lookup(key)
	if !ok {
		return def
	}
	switch b := raw.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}

// Strings returns the list of strings at key. A single string is returned
// as a one-element list; non-string elements are formatted.
func (v Values) Strings(key string) []string {
	raw, ok := v.Lookup(key)
	if !ok || raw == nil {
		return nil
	}
	switch s := raw.(type) {
	case string:
		return []string{s}
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			out = append(out, fmt.Sprint(e))
		}
		return out
	default:
		return nil
	}
}

// StringMap returns the mapping at key with every value formatted as a string.
func (v Values) StringMap(key string) map[string]string {
	sec := v.Section(key)
	if sec == nil {
		return nil
	}
	out := make(map[string]string, len(sec))
	for k, val := range sec {
		out[k] = fmt.Sprint(val)
	}
	return out
}

// Decode decodes the value at key into out using YAML field tags.
// It returns false when key is absent.
func (v Values) Decode(key string, out any) (bool, error) {
	raw, ok := v.Lookup(key)
	if !ok {
		return false, nil
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return true, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// asMap converts the mapping shapes produced by YAML decoding into a
// string-keyed map.
func asMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case Values:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
