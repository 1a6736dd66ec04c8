// Package report writes the results of a dataset build.
//
// Three writers are provided:
//   - DatasetWriter: the museums.js dataset consumed by the web front end
//   - MarkdownWriter: a run summary for documentation and sharing
//   - SimpleWriter: a short plain-text summary for the terminal
//
// All of them implement Writer.
package report
