package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nao1215/sosanalyzer/internal/model"
)

// SimpleWriter outputs human-readable text reports with fixed-width tables.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether severities with no findings are listed.
	showEmpty bool

	// verbose adds descriptions and matched text to the findings.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithTextTitle sets the report title.
func WithTextTitle(title string) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.title = title
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the results in human-readable format.
func (w *SimpleWriter) Write(results *model.Results) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, results)
	w.writeSummary(&sb, results)
	w.writeFacts(&sb, results)
	w.writeFindings(&sb, results)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle("%s", title)
	}
	return t
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, results *model.Results) {
	sb.WriteString(strings.ToUpper(w.title))
	sb.WriteString("\n\n")

	t := newTable("")
	t.AppendRows([]table.Row{
		{"Host", orDash(results.Host)},
		{"Run ID", results.RunID},
		{"Generated", results.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Working Directory", results.WorkDir},
		{"Analyzers", orDash(strings.Join(results.Analyzers, ", "))},
	})
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, results *model.Results) {
	t := newTable("SEVERITY SUMMARY")
	t.AppendHeader(table.Row{"Severity", "Count"})
	for _, sev := range model.AllSeverities {
		t.AppendRow(table.Row{sev.String(), results.Count(sev)})
	}
	t.AppendFooter(table.Row{"Total", results.TotalFindings()})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeFacts(sb *strings.Builder, results *model.Results) {
	if len(results.Facts) == 0 && !w.showEmpty {
		return
	}

	t := newTable("HOST FACTS")
	t.AppendHeader(table.Row{"Fact", "Value"})
	for _, f := range results.Facts {
		t.AppendRow(table.Row{factLabel(f.Name), f.Value})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeFindings(sb *strings.Builder, results *model.Results) {
	if !results.HasFindings() && !w.showEmpty {
		sb.WriteString("No findings detected.\n\n")
		return
	}

	for _, sev := range model.AllSeverities {
		findings := results.FindingsBySeverity(sev)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}
		w.writeFindingsForSeverity(sb, sev, findings)
	}
}

func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	t := newTable(fmt.Sprintf("[%s] %s FINDINGS", severityIndicator(severity), severity))
	header := table.Row{"Rule", "Title", "Location"}
	if w.verbose {
		header = append(header, "Details")
	}
	t.AppendHeader(header)

	for _, f := range findings {
		row := table.Row{f.Rule, f.Title, location(f)}
		if w.verbose {
			details := f.Description
			if f.Match != "" {
				details = strings.TrimSpace(details + "\n" + f.Match)
			}
			row = append(row, orDash(details))
		}
		t.AppendRow(row)
	}
	if len(findings) == 0 {
		t.AppendRow(table.Row{"-", "No findings", "-"})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 50},
		{Number: 4, WidthMax: 60},
	})

	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString("Report generated by sosanalyzer\n")
	sb.WriteString("https://github.com/nao1215/sosanalyzer\n")
}
