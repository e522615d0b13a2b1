package model

import (
	"fmt"
	"strings"
)

// Severity represents the importance of a finding.
// Severities are ordered: a higher value is more severe, which allows
// sorting findings with a plain integer comparison.
type Severity int

const (
	// SeverityInfo indicates informational findings that need no action.
	// Examples: empty command outputs, facts worth a second look.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: unusually large log files, deprecated settings.
	SeverityLow

	// SeverityMedium indicates issues that warrant attention.
	// Examples: SELinux disabled, repeated service restarts.
	SeverityMedium

	// SeverityHigh indicates problems that likely affect the host.
	// Examples: OOM killer activity, filesystem I/O errors.
	SeverityHigh

	// SeverityCritical indicates problems that require immediate action.
	// Examples: kernel panics, hardware machine check exceptions.
	SeverityCritical
)

// AllSeverities lists every severity from the most to the least severe.
var AllSeverities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a case-insensitive severity name into a Severity.
// An empty string parses as SeverityInfo.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "INFO":
		return SeverityInfo, nil
	case "LOW":
		return SeverityLow, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "HIGH":
		return SeverityHigh, nil
	case "CRITICAL":
		return SeverityCritical, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
// Severities are stored by name so that phase outputs and rule files stay
// readable.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
