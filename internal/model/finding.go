package model

// Finding is a single observation produced by an analyzer.
type Finding struct {
	// Rule is the identifier of the rule or check that produced the finding.
	Rule string `json:"rule"`

	// Analyzer is the name of the analyzer that produced the finding.
	Analyzer string `json:"analyzer"`

	// Severity is the importance of the finding.
	Severity Severity `json:"severity"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Recommendation describes how to address the finding.
	Recommendation string `json:"recommendation,omitempty"`

	// File is the bundle file the finding refers to, relative to the data root.
	File string `json:"file,omitempty"`

	// Line is the 1-based line number in File, or 0 when not line based.
	Line int `json:"line,omitempty"`

	// Match is the text that triggered the finding.
	Match string `json:"match,omitempty"`
}

// Fact is a host property collected by a scanner.
type Fact struct {
	// Name identifies the fact, e.g. "hostname" or "kernel".
	Name string `json:"name"`

	// Value is the collected value with surrounding whitespace removed.
	Value string `json:"value"`

	// Source is the bundle file the value was read from.
	Source string `json:"source,omitempty"`
}

// FileEntry describes one regular file of the extracted bundle.
type FileEntry struct {
	// Path is the slash-separated path relative to the data root.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Mode is the permission string, e.g. "-rw-r--r--".
	Mode string `json:"mode"`

	// SHA256 is the hex encoded digest of the file content.
	SHA256 string `json:"sha256"`
}

// AnalyzerOutput is what a single analyzer persists in the working directory.
type AnalyzerOutput struct {
	// Analyzer is the producing analyzer's name.
	Analyzer string `json:"analyzer"`

	// Findings holds the analyzer's findings in discovery order.
	Findings []Finding `json:"findings"`
}
