package model

import "time"

// JoinedEntry pairs a painting with the museum that claimed it.
// It is created by the join step and never mutated afterwards.
type JoinedEntry struct {
	Painting Painting
	Museum   Museum
}

// ResolvedEntry is a JoinedEntry whose two images were both downloaded.
// Both paths are absolute.
type ResolvedEntry struct {
	JoinedEntry

	PaintingImagePath string
	MuseumImagePath   string
}

// ImageCredit holds attribution metadata recorded when an image was fetched.
type ImageCredit struct {
	SourceURL   string `json:"source_url,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Copyright   string `json:"copyright,omitempty"`
	Description string `json:"description,omitempty"`
}

// IsZero reports whether the credit carries no information.
func (c ImageCredit) IsZero() bool {
	return c == ImageCredit{}
}

// DatasetEntry is one record of the emitted dataset.
//
// The painting and museum fields are flattened into a single JSON object.
// Their JSON keys are disjoint, so no field shadows another.
type DatasetEntry struct {
	Painting
	Museum

	// Geohash is the geohash of the museum location.
	Geohash string `json:"geohash"`

	// Width is the pixel width of the scaled museum preview.
	Width int `json:"width"`

	// Orig, PaintingPreview and Styled are file names relative to the
	// results directory.
	Orig            string `json:"orig"`
	PaintingPreview string `json:"painting_preview"`
	Styled          string `json:"styled"`

	// StylizeExitCode is the exit code of the stylizer run, or nil when
	// no run happened (existing output or start failure).
	StylizeExitCode *int `json:"stylize_exit_code,omitempty"`

	PaintingCredit *ImageCredit `json:"painting_credit,omitempty"`
	MuseumCredit   *ImageCredit `json:"museum_credit,omitempty"`
}

// Asset describes an image stored in the asset cache.
type Asset struct {
	// Name is the normalized image reference.
	Name string `json:"name"`

	// Path is the absolute path of the cached file.
	Path string `json:"path"`

	// PageURL is the description page the image URL was scraped from.
	PageURL string `json:"page_url"`

	// ImageURL is the URL the image bytes were downloaded from.
	ImageURL string `json:"image_url"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Credit ImageCredit `json:"credit"`

	FetchedAt time.Time `json:"fetched_at"`
}
