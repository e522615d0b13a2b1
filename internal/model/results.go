package model

import (
	"sort"
	"time"
)

// Results is the merged outcome of one analysis run.
// It is produced by the result dump step and consumed by report generators.
type Results struct {
	// RunID uniquely identifies the dump that produced these results.
	RunID string `json:"run_id"`

	// Host is the analyzed host's name, taken from the "hostname" fact.
	Host string `json:"host,omitempty"`

	// WorkDir is the working directory the results were collected from.
	WorkDir string `json:"workdir"`

	// GeneratedAt is when the results were dumped.
	GeneratedAt time.Time `json:"generated_at"`

	// Analyzers lists the analyzers whose output was merged.
	Analyzers []string `json:"analyzers,omitempty"`

	// Facts holds the facts collected by the scan phase.
	Facts []Fact `json:"facts,omitempty"`

	// Findings holds every analyzer finding, most severe first.
	Findings []Finding `json:"findings,omitempty"`
}

// Count returns the number of findings with the given severity.
func (r *Results) Count(severity Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// TotalFindings returns the number of findings of any severity.
func (r *Results) TotalFindings() int {
	return len(r.Findings)
}

// HasFindings reports whether any finding was recorded.
func (r *Results) HasFindings() bool {
	return len(r.Findings) > 0
}

// FindingsBySeverity returns the findings with the given severity,
// preserving their order.
func (r *Results) FindingsBySeverity(severity Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// Fact returns the value of the named fact and whether it was collected.
func (r *Results) Fact(name string) (string, bool) {
	for _, f := range r.Facts {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// SortFindings orders findings by severity (most severe first), then by
// rule, file and line so that output is stable between runs.
func (r *Results) SortFindings() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
}
