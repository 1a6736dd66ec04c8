// Package main provides the entry point for the museumstyle CLI.
//
// museumstyle builds a museum/painting dataset for a web front-end. It reads
// Wikipedia museum and painting pages from a SQL store, pairs each museum
// with its most viewed painting, downloads both images from Wikimedia,
// renders the museum photo in the painting's style and writes the result as
// a JavaScript dataset.
//
// Usage:
//
//	museumstyle build --dsn postgres://... --neural-style-py ./neural_style.py
//	museumstyle resolve "Mona Lisa.jpg"
//
// See --help for all available options.
package main

// main is the entry point for museumstyle.
func main() {
	Execute()
}
