package model

import (
	"encoding/json"
	"testing"
)

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestParseSeverity tests parsing of severity names.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected Severity
		wantErr  bool
	}{
		{"info", SeverityInfo, false},
		{"", SeverityInfo, false},
		{"Low", SeverityLow, false},
		{"MEDIUM", SeverityMedium, false},
		{" high ", SeverityHigh, false},
		{"critical", SeverityCritical, false},
		{"severe", SeverityInfo, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSeverity(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("ParseSeverity(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

// TestSeverityOrdering tests that severity levels are ordered correctly.
// Info < Low < Medium < High < Critical
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if !(SeverityInfo < SeverityLow &&
		SeverityLow < SeverityMedium &&
		SeverityMedium < SeverityHigh &&
		SeverityHigh < SeverityCritical) {
		t.Error("severities are not in ascending order")
	}

	for i := 1; i < len(AllSeverities); i++ {
		if AllSeverities[i-1] <= AllSeverities[i] {
			t.Errorf("AllSeverities is not descending at index %d", i)
		}
	}
}

// TestSeverityJSON tests that severities are serialized by name.
func TestSeverityJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Finding{Rule: "r", Severity: SeverityHigh})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if raw["severity"] != "HIGH" {
		t.Errorf("expected severity HIGH in JSON, got %v", raw["severity"])
	}

	var f Finding
	if err := json.Unmarshal([]byte(`{"rule":"x","severity":"bogus"}`), &f); err == nil {
		t.Error("expected error for unknown severity")
	}
}
