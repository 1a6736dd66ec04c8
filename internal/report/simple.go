package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/museumstyle/internal/model"
)

// SimpleWriter outputs a human-readable run summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds one line per retained entry.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with one line per entry.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
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

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString("                    MUSEUMSTYLE BUILD\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	if summary.ID != "" {
		sb.WriteString(fmt.Sprintf("Run ID:      %s\n", summary.ID))
	}
	sb.WriteString(fmt.Sprintf("Duration:    %s\n", summary.Duration().Round(time.Second)))
	sb.WriteString(fmt.Sprintf("Dataset:     %s\n", summary.DatasetPath))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  Museums loaded:    %d\n", summary.Museums))
	sb.WriteString(fmt.Sprintf("  Paintings loaded:  %d\n", summary.Paintings))
	sb.WriteString(fmt.Sprintf("  Joined:            %d\n", summary.Joined))
	sb.WriteString(fmt.Sprintf("  Dropped:           %d\n", summary.Dropped()))
	sb.WriteString(fmt.Sprintf("  Retained:          %d\n", summary.Retained))
	sb.WriteString(fmt.Sprintf("  Stylized:          %d (%d already present, %d failed)\n",
		summary.Stylized, summary.StylizeSkipped, summary.StylizeFailures))

	if w.verbose && len(summary.Entries) > 0 {
		sb.WriteString("\n")
		for _, e := range summary.Entries {
			sb.WriteString(fmt.Sprintf("  [+] %s: %s\n", e.Museum.Name, e.Painting.Name))
		}
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}
