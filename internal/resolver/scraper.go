package resolver

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultMarkers precede the href of the original-resolution file link on
// the two kinds of description pages.
var DefaultMarkers = []string{
	`Size of this preview: <a href="`,
	`<div class="fullMedia"><a href="`,
}

// DefaultPrefixes are the description page URL prefixes probed in order.
var DefaultPrefixes = []string{
	"https://en.wikipedia.org/wiki/",
	"https://en.wikipedia.org/wiki/File:",
	"https://commons.wikimedia.org/wiki/",
	"https://commons.wikimedia.org/wiki/File:",
}

// PageScraper finds image URLs in a description page.
type PageScraper interface {
	// ImageURLs returns candidate URLs of the original image, most
	// preferred first. An empty result means the page has no image.
	ImageURLs(page string) []string
}

// MarkerScraper finds image URLs by looking for fixed marker strings that
// directly precede an href value.
type MarkerScraper struct {
	Markers []string
}

// NewMarkerScraper returns a scraper using DefaultMarkers.
func NewMarkerScraper() *MarkerScraper {
	return &MarkerScraper{Markers: DefaultMarkers}
}

// ImageURLs implements PageScraper. For each marker, in order, the first
// occurrence is used and its href is read up to the next double quote.
// Protocol-relative URLs are given the https scheme.
func (s *MarkerScraper) ImageURLs(page string) []string {
	var urls []string
	seen := make(map[string]bool)

	for _, marker := range s.Markers {
		start := strings.Index(page, marker)
		if start < 0 {
			continue
		}
		start += len(marker)

		end := strings.IndexByte(page[start:], '"')
		if end <= 0 {
			continue
		}

		url := html.UnescapeString(page[start : start+end])
		if strings.HasPrefix(url, "//") {
			url = "https:" + url
		}
		if !seen[url] {
			seen[url] = true
			urls = append(urls, url)
		}
	}
	return urls
}
