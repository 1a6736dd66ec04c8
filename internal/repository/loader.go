package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nao1215/museumstyle/internal/memo"
	"github.com/nao1215/museumstyle/internal/model"
	"github.com/nao1215/museumstyle/internal/store"
	"github.com/nao1215/museumstyle/internal/wikitext"
)

// Cache keys of the two loaders.
const (
	MuseumsKey   = "museums"
	PaintingsKey = "paintings"
)

// Loader loads museums and paintings through the parsed-record cache.
type Loader struct {
	store     store.Store
	museums   *memo.Cache[map[string]model.Museum]
	paintings *memo.Cache[[]model.Painting]
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*loaderOptions)

type loaderOptions struct {
	codec  memo.Codec
	logger *slog.Logger
}

// WithCodec sets the cache file format. The default is JSON.
func WithCodec(codec memo.Codec) Option {
	return func(o *loaderOptions) {
		o.codec = codec
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *loaderOptions) {
		o.logger = logger
	}
}

// NewLoader creates a Loader that reads rows from s and caches records in
// cacheDir. s may be nil when every record is known to be cached; a miss then
// fails with an error instead of panicking.
func NewLoader(s store.Store, cacheDir string, opts ...Option) *Loader {
	o := loaderOptions{codec: memo.JSONCodec{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	cacheOpts := []memo.Option{memo.WithCodec(o.codec), memo.WithLogger(o.logger)}
	return &Loader{
		store:     s,
		museums:   memo.New[map[string]model.Museum](cacheDir, cacheOpts...),
		paintings: memo.New[[]model.Painting](cacheDir, cacheOpts...),
		logger:    o.logger,
	}
}

// LoadMuseums returns museums keyed by name.
func (l *Loader) LoadMuseums(ctx context.Context) (map[string]model.Museum, error) {
	return l.museums.GetOrCompute(ctx, MuseumsKey, func(ctx context.Context) (map[string]model.Museum, error) {
		if l.store == nil {
			return nil, ErrNoStore
		}
		rows, err := l.store.MuseumRows(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load museums: %w", err)
		}
		museums := BuildMuseums(rows)
		l.logger.Info("museums extracted", "rows", len(rows), "kept", len(museums))
		return museums, nil
	})
}

// LoadPaintings returns paintings in store order.
func (l *Loader) LoadPaintings(ctx context.Context) ([]model.Painting, error) {
	return l.paintings.GetOrCompute(ctx, PaintingsKey, func(ctx context.Context) ([]model.Painting, error) {
		if l.store == nil {
			return nil, ErrNoStore
		}
		rows, err := l.store.PaintingRows(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load paintings: %w", err)
		}
		paintings := BuildPaintings(rows)
		l.logger.Info("paintings extracted", "rows", len(rows), "kept", len(paintings))
		return paintings, nil
	})
}

// ClearCache removes the museum and painting cache files and returns how
// many were removed. Other files in the cache directory are kept.
func (l *Loader) ClearCache() (int, error) {
	removed := 0
	for _, del := range []func() (bool, error){
		func() (bool, error) { return l.museums.Delete(MuseumsKey) },
		func() (bool, error) { return l.paintings.Delete(PaintingsKey) },
	} {
		ok, err := del()
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// BuildMuseums applies extraction and acceptance rules to museum rows.
// Rows without a decodable location are dropped. A later row replaces an
// earlier one with the same title.
func BuildMuseums(rows []store.MuseumRow) map[string]model.Museum {
	museums := make(map[string]model.Museum, len(rows))
	for _, row := range rows {
		if !row.Location.Valid {
			continue
		}
		loc, ok := ParseLocation(row.Location.String)
		if !ok {
			continue
		}

		fields := wikitext.Extract(row.Wikitext, wikitext.MuseumDescriptor)
		museums[row.Title] = model.Museum{
			Name:      row.Title,
			ViewCount: row.ViewCount,
			Location:  loc,
			Image:     fields[wikitext.FieldImage],
		}
	}
	return museums
}

// BuildPaintings applies extraction and acceptance rules to painting rows.
// Rows whose infobox lacks an image or a linked museum are dropped.
func BuildPaintings(rows []store.PaintingRow) []model.Painting {
	paintings := make([]model.Painting, 0, len(rows))
	for _, row := range rows {
		fields := wikitext.Extract(row.Wikitext, wikitext.PaintingDescriptor)

		image, hasImage := fields.Get(wikitext.FieldImage)
		museum, hasMuseum := fields.Get(wikitext.FieldMuseum)
		if !hasImage || !hasMuseum {
			continue
		}

		p := model.Painting{
			WikiID:    row.Title,
			Name:      row.Title,
			Year:      fields[wikitext.FieldYear],
			Image:     image,
			Museum:    museum,
			Artist:    fields[wikitext.FieldArtist],
			ViewCount: row.ViewCount,
		}
		if name, ok := fields.Get(wikitext.FieldName); ok {
			p.Name = name
		}
		paintings = append(paintings, p)
	}
	return paintings
}

// ParseLocation decodes a coordinate property of the form
// {"lat": 48.86, "lng": 2.33}. Both keys are required.
func ParseLocation(raw string) (model.Location, bool) {
	var v struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return model.Location{}, false
	}
	if v.Lat == nil || v.Lng == nil {
		return model.Location{}, false
	}
	return model.Location{Lat: *v.Lat, Lng: *v.Lng}, true
}
