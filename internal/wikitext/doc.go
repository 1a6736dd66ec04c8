// Package wikitext parses the subset of MediaWiki markup needed to read
// infobox templates.
//
// The parser understands templates ({{name|a|key=value}}), wikilinks
// ([[title|text]]), bracketed external links ([url label]) and HTML comments.
// Everything else is kept as text. Constructs that are never closed are
// treated as literal text, so parsing never fails.
//
// The main entry point for callers is Extract, which locates the first
// infobox template of a page and maps its parameters to record fields
// according to a Descriptor.
package wikitext
