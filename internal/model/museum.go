package model

import (
	geohash "github.com/TomiHiltunen/geohash-golang"
)

// Location is a geographic point in decimal degrees.
type Location struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Geohash returns the 12-character geohash of the point.
// The presentation layer uses prefixes of it to bucket museums on a map.
func (l Location) Geohash() string {
	return geohash.Encode(l.Lat, l.Lng)
}

// Museum is a museum record loaded from the upstream store.
// A museum is only retained when its location could be decoded, so the
// Location of every loaded Museum is meaningful.
type Museum struct {
	// Name is the page title of the museum and its unique key.
	Name string `json:"museum_name" yaml:"museum_name"`

	// ViewCount is the page view count used for popularity ranking.
	ViewCount int64 `json:"viewcount" yaml:"viewcount"`

	Location `yaml:",inline"`

	// Image is the raw image reference taken from the infobox.
	// Empty when the infobox has no image parameter.
	Image string `json:"museum_image,omitempty" yaml:"museum_image,omitempty"`
}
