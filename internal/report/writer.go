package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sosanalyzer/internal/model"
)

// Writer renders results to an output.
type Writer interface {
	// Write outputs the results to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(results *model.Results) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the results to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(results *model.Results) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
	title  string
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output, title: DefaultTitle}
}

// DefaultTitle is the report title used when none is configured.
const DefaultTitle = "sosreport Analysis Report"

// Format is a report output format.
type Format string

const (
	// FormatMarkdown renders report.md.
	FormatMarkdown Format = "markdown"
	// FormatText renders report.txt.
	FormatText Format = "text"
	// FormatJSON renders report.json.
	FormatJSON Format = "json"
)

// ParseFormat converts a configuration value to a Format.
// "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FileName returns the report file name for the format.
func (f Format) FileName() string {
	switch f {
	case FormatMarkdown:
		return "report.md"
	case FormatText:
		return "report.txt"
	case FormatJSON:
		return "report.json"
	default:
		return "report"
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// truncateString truncates a string to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// location formats the file and line of a finding.
func location(f model.Finding) string {
	switch {
	case f.File == "":
		return "-"
	case f.Line > 0:
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	default:
		return f.File
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// factLabel turns a fact name such as "package_count" into "Package Count".
func factLabel(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}
