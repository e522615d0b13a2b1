package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sosanalyzer/internal/model"
)

// MarkdownWriter outputs reports in GitHub flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownTitle sets the H1 title of the report.
func WithMarkdownTitle(title string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.title = title
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the results in Markdown format.
func (w *MarkdownWriter) Write(results *model.Results) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, results)
	w.writeSummary(md, results)
	w.writeFacts(md, results)
	w.writeFindings(md, results)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, results *model.Results) {
	md.H1(w.title)
	md.PlainText("")

	host := results.Host
	if host == "" {
		host = "unknown"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Host", "`" + host + "`"},
			{"Run ID", "`" + results.RunID + "`"},
			{"Generated", results.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Working Directory", "`" + results.WorkDir + "`"},
			{"Analyzers", strconv.Itoa(len(results.Analyzers))},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, results *model.Results) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(results.Count(model.SeverityCritical))},
			{"🟠 High", strconv.Itoa(results.Count(model.SeverityHigh))},
			{"🟡 Medium", strconv.Itoa(results.Count(model.SeverityMedium))},
			{"🔵 Low", strconv.Itoa(results.Count(model.SeverityLow))},
			{"⚪ Info", strconv.Itoa(results.Count(model.SeverityInfo))},
			{"**Total**", "**" + strconv.Itoa(results.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	if results.HasFindings() {
		w.writePieChart(md, results)
	}
	w.writeAlert(md, results)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, results *model.Results) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	labels := map[model.Severity]string{
		model.SeverityCritical: "Critical",
		model.SeverityHigh:     "High",
		model.SeverityMedium:   "Medium",
		model.SeverityLow:      "Low",
		model.SeverityInfo:     "Info",
	}
	for _, sev := range model.AllSeverities {
		if n := results.Count(sev); n > 0 {
			chart.LabelAndIntValue(labels[sev], uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, results *model.Results) {
	switch {
	case results.Count(model.SeverityCritical) > 0:
		md.Cautionf(
			"Critical problems detected! %d critical finding(s) require immediate attention.",
			results.Count(model.SeverityCritical),
		)
	case results.Count(model.SeverityHigh) > 0:
		md.Warningf(
			"High severity problems detected. %d finding(s) likely affect the host.",
			results.Count(model.SeverityHigh),
		)
	case results.Count(model.SeverityMedium) > 0:
		md.Importantf(
			"Medium severity problems found. %d finding(s) warrant attention.",
			results.Count(model.SeverityMedium),
		)
	case results.HasFindings():
		md.Note("Only low severity and informational findings detected.")
	default:
		md.Tip("No problems detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFacts(md *markdown.Markdown, results *model.Results) {
	md.H2("Host Facts")
	md.PlainText("")

	if len(results.Facts) == 0 {
		md.PlainText("No host facts collected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(results.Facts))
	for i, f := range results.Facts {
		rows[i] = []string{factLabel(f.Name), escapeCell(truncateString(f.Value, 80)), "`" + orDash(f.Source) + "`"}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Fact", "Value", "Source"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, results *model.Results) {
	md.H2("Findings")
	md.PlainText("")

	if !results.HasFindings() {
		md.PlainText("No findings detected.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "🔴 Critical"},
		{model.SeverityHigh, "🟠 High"},
		{model.SeverityMedium, "🟡 Medium"},
		{model.SeverityLow, "🔵 Low"},
		{model.SeverityInfo, "⚪ Info"},
	}

	for _, sev := range severities {
		findings := results.FindingsBySeverity(sev.level)
		if len(findings) == 0 {
			continue
		}

		md.H3(sev.header)
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = []string{
			"`" + f.Rule + "`",
			escapeCell(f.Title),
			"`" + truncateString(location(f), 60) + "`",
			escapeCell(truncateString(orDash(f.Recommendation), 60)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rule", "Title", "Location", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range findings {
		if f.Description == "" && f.Match == "" {
			continue
		}
		detail := f.Description
		if f.Match != "" {
			if detail != "" {
				detail += "\n\n"
			}
			detail += "Matched: `" + f.Match + "`"
		}
		md.Details(f.Title+" ("+location(f)+")", detail)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sosanalyzer](https://github.com/nao1215/sosanalyzer)*")
}

// escapeCell keeps pipes in cell text from splitting table columns.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
