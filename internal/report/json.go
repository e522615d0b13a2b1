package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sosanalyzer/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// version is recorded in the report envelope.
	version string

	// indent enables pretty-printed JSON output.
	indent bool

	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion sets the tool version recorded in the report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// WithJSONTitle sets the report title.
func WithJSONTitle(title string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.title = title
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport wraps results with report metadata.
type JSONReport struct {
	// Title is the configured report title.
	Title string `json:"title"`

	// Version is the sosanalyzer version that generated this report.
	Version string `json:"version,omitempty"`

	// Summary maps severity names to finding counts.
	Summary map[string]int `json:"summary"`

	// Results are the dumped analysis results.
	Results *model.Results `json:"results"`
}

// NewJSONReport creates a JSONReport for results.
func NewJSONReport(results *model.Results, title, version string) *JSONReport {
	summary := make(map[string]int, len(model.AllSeverities))
	for _, sev := range model.AllSeverities {
		summary[sev.String()] = results.Count(sev)
	}
	return &JSONReport{
		Title:   title,
		Version: version,
		Summary: summary,
		Results: results,
	}
}

// Write outputs the results wrapped in a JSONReport.
func (w *JSONWriter) Write(results *model.Results) (int, error) {
	return w.writeJSON(NewJSONReport(results, w.title, w.version))
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
