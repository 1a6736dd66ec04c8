package model

// Painting is a painting record loaded from the upstream store.
// Image and Museum are always non-empty for a loaded Painting.
type Painting struct {
	// WikiID is the page title of the painting.
	WikiID string `json:"painting_wiki_id" yaml:"painting_wiki_id"`

	// Name is the display name. It defaults to WikiID and is replaced by
	// the infobox name when present.
	Name string `json:"painting_name" yaml:"painting_name"`

	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Image is the raw image reference taken from the infobox.
	Image string `json:"painting" yaml:"painting"`

	// Museum is the title of the first wikilink in the infobox museum
	// parameter. It is matched against Museum.Name during the join.
	Museum string `json:"museum" yaml:"museum"`

	Artist string `json:"artist,omitempty" yaml:"artist,omitempty"`

	ViewCount int64 `json:"painting_viewcount" yaml:"painting_viewcount"`
}
