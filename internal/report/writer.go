package report

import (
	"io"

	"github.com/nao1215/museumstyle/internal/model"
)

// Writer renders a run summary to its output and returns the number of
// bytes written.
type Writer interface {
	Write(summary *model.RunSummary) (int, error)
}

// baseWriter holds the destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

var (
	_ Writer = (*DatasetWriter)(nil)
	_ Writer = (*MarkdownWriter)(nil)
	_ Writer = (*SimpleWriter)(nil)
)
