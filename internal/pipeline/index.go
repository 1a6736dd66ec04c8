package pipeline

import (
	"cmp"
	"slices"

	"github.com/nao1215/museumstyle/internal/model"
)

// MuseumIndex hands out each museum at most once.
type MuseumIndex struct {
	museums map[string]model.Museum
}

// NewMuseumIndex copies museums into a new index. The input map is not
// modified by later claims.
func NewMuseumIndex(museums map[string]model.Museum) *MuseumIndex {
	idx := &MuseumIndex{museums: make(map[string]model.Museum, len(museums))}
	for name, m := range museums {
		idx.museums[name] = m
	}
	return idx
}

// Claim removes and returns the museum called name. The second result is
// false when no such museum exists or it was already claimed.
func (idx *MuseumIndex) Claim(name string) (model.Museum, bool) {
	m, ok := idx.museums[name]
	if ok {
		delete(idx.museums, name)
	}
	return m, ok
}

// Len returns the number of unclaimed museums.
func (idx *MuseumIndex) Len() int {
	return len(idx.museums)
}

// SortByViews returns a copy of paintings ordered by view count, highest
// first. Paintings with equal counts keep their input order.
func SortByViews(paintings []model.Painting) []model.Painting {
	sorted := slices.Clone(paintings)
	slices.SortStableFunc(sorted, func(a, b model.Painting) int {
		return cmp.Compare(b.ViewCount, a.ViewCount)
	})
	return sorted
}

// Join pairs every museum with its most viewed painting. Paintings are
// visited by descending view count and each one claims the museum it
// references; paintings whose museum is unknown or already claimed are
// dropped.
func Join(paintings []model.Painting, idx *MuseumIndex) []model.JoinedEntry {
	var joined []model.JoinedEntry
	for _, p := range SortByViews(paintings) {
		m, ok := idx.Claim(p.Museum)
		if !ok {
			continue
		}
		joined = append(joined, model.JoinedEntry{Painting: p, Museum: m})
	}
	return joined
}
