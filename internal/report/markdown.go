package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/museumstyle/internal/model"
)

// MarkdownWriter outputs run summaries in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writeEntries(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("museumstyle Build Summary")
	md.PlainText("")

	runID := summary.ID
	if runID == "" {
		runID = "-"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + runID + "`"},
			{"Started", formatTime(summary.StartedAt)},
			{"Duration", summary.Duration().Round(time.Second).String()},
			{"Dataset", "`" + summary.DatasetPath + "`"},
		},
	})
	md.PlainText("")
}

// writeCounts writes the funnel from loaded entities to retained entries.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Pipeline")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Count"},
		Rows: [][]string{
			{"Museums loaded", strconv.Itoa(summary.Museums)},
			{"Paintings loaded", strconv.Itoa(summary.Paintings)},
			{"Paintings joined", strconv.Itoa(summary.Joined)},
			{"Dropped (image not resolved)", strconv.Itoa(summary.Unresolved)},
			{"Dropped (preview failed)", strconv.Itoa(summary.PreviewFailures)},
			{"**Retained**", "**" + strconv.Itoa(summary.Retained) + "**"},
		},
	})
	md.PlainText("")

	md.H2("Stylization")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Stylized", strconv.Itoa(summary.Stylized)},
			{"Already present", strconv.Itoa(summary.StylizeSkipped)},
			{"Failed", strconv.Itoa(summary.StylizeFailures)},
		},
	})
	md.PlainText("")

	if summary.Joined > 0 {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of what happened to joined entries.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.RunSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Joined Entries"),
		piechart.WithShowData(true),
	)

	if summary.Retained > 0 {
		chart.LabelAndIntValue("Retained", uint64(summary.Retained))
	}
	if summary.Unresolved > 0 {
		chart.LabelAndIntValue("Image not resolved", uint64(summary.Unresolved))
	}
	if summary.PreviewFailures > 0 {
		chart.LabelAndIntValue("Preview failed", uint64(summary.PreviewFailures))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing the overall outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary) {
	switch {
	case summary.Retained == 0:
		md.Cautionf("No entries were retained out of %d joined painting(s).", summary.Joined)
	case summary.StylizeFailures > 0:
		md.Warningf("%d stylizer run(s) failed. Their entries are kept without a styled image.", summary.StylizeFailures)
	case summary.Dropped() > 0:
		md.Notef("%d joined painting(s) were dropped.", summary.Dropped())
	default:
		md.Tip("Every joined painting was retained.")
	}
	md.PlainText("")
}

// writeEntries writes one row per retained entry.
func (w *MarkdownWriter) writeEntries(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Museums")
	md.PlainText("")

	if len(summary.Entries) == 0 {
		md.PlainText("No entries.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Entries))
	for i, e := range summary.Entries {
		rows[i] = []string{
			truncateString(e.Museum.Name, 40),
			truncateString(e.Painting.Name, 40),
			orDash(e.Artist),
			orDash(e.Year),
			strconv.FormatInt(e.Painting.ViewCount, 10),
			stylizeStatus(e.StylizeExitCode),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Museum", "Painting", "Artist", "Year", "Views", "Styled"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [museumstyle](https://github.com/nao1215/museumstyle)*")
}

// stylizeStatus describes a stylizer exit code.
func stylizeStatus(code *int) string {
	switch {
	case code == nil:
		return "-"
	case *code == 0:
		return "✅"
	default:
		return "❌ exit " + strconv.Itoa(*code)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05 MST")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen runes with ellipsis.
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
