package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/nao1215/museumstyle/internal/model"
)

// DefaultVariable is the JavaScript variable the dataset is assigned to.
const DefaultVariable = "museums"

// ErrInvalidVariable is returned for a variable name that is not a
// JavaScript identifier.
var ErrInvalidVariable = errors.New("invalid JavaScript variable name")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ValidVariable reports whether name can be used as the dataset variable.
func ValidVariable(name string) bool {
	return identifierPattern.MatchString(name)
}

// DatasetWriter writes the dataset as a JavaScript assignment:
//
//	museums =
//	[ ...entries as indented JSON... ];
//
// The file is loaded with a plain script tag, so no module syntax is used.
type DatasetWriter struct {
	baseWriter

	// variable is the name the array is assigned to.
	variable string

	// indentString is the JSON indentation for each level.
	indentString string
}

// DatasetWriterOption configures a DatasetWriter.
type DatasetWriterOption func(*DatasetWriter)

// WithVariable sets the variable name. Empty names are ignored.
func WithVariable(name string) DatasetWriterOption {
	return func(w *DatasetWriter) {
		if name != "" {
			w.variable = name
		}
	}
}

// WithIndent sets the indentation string of the JSON array.
func WithIndent(indent string) DatasetWriterOption {
	return func(w *DatasetWriter) {
		w.indentString = indent
	}
}

// NewDatasetWriter creates a DatasetWriter that outputs to the given writer.
func NewDatasetWriter(output io.Writer, opts ...DatasetWriterOption) *DatasetWriter {
	w := &DatasetWriter{
		baseWriter:   newBaseWriter(output),
		variable:     DefaultVariable,
		indentString: "  ",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the entries of summary.
func (w *DatasetWriter) Write(summary *model.RunSummary) (int, error) {
	return w.WriteEntries(summary.Entries)
}

// WriteEntries outputs entries. A nil slice is written as an empty array.
func (w *DatasetWriter) WriteEntries(entries []model.DatasetEntry) (int, error) {
	if !ValidVariable(w.variable) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVariable, w.variable)
	}
	if entries == nil {
		entries = []model.DatasetEntry{}
	}

	var buf bytes.Buffer
	buf.WriteString(w.variable + " = \n")

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", w.indentString)
	if err := enc.Encode(entries); err != nil {
		return 0, fmt.Errorf("failed to encode dataset: %w", err)
	}

	// Encode terminates the value with a newline; the assignment ends right
	// after the closing bracket.
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	data = append(data, ';')

	return w.output.Write(data)
}
