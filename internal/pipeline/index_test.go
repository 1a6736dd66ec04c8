package pipeline

import (
	"testing"

	"github.com/nao1215/museumstyle/internal/model"
)

// TestMuseumIndexClaim tests single-claim semantics.
func TestMuseumIndexClaim(t *testing.T) {
	t.Parallel()

	museums := map[string]model.Museum{
		"Louvre": {Name: "Louvre", ViewCount: 10},
	}
	idx := NewMuseumIndex(museums)

	m, ok := idx.Claim("Louvre")
	if !ok || m.Name != "Louvre" {
		t.Fatalf("expected first claim to succeed, got %v %v", m, ok)
	}
	if _, ok := idx.Claim("Louvre"); ok {
		t.Error("expected second claim to fail")
	}
	if _, ok := idx.Claim("Prado"); ok {
		t.Error("expected unknown museum claim to fail")
	}
	if idx.Len() != 0 {
		t.Errorf("expected 0 unclaimed museums, got %d", idx.Len())
	}
	if _, ok := museums["Louvre"]; !ok {
		t.Error("expected input map to be left untouched")
	}
}

// TestJoin tests the painting to museum join.
func TestJoin(t *testing.T) {
	t.Parallel()

	museums := map[string]model.Museum{
		"M":  {Name: "M"},
		"M2": {Name: "M2"},
	}

	t.Run("most viewed painting wins the museum", func(t *testing.T) {
		t.Parallel()

		paintings := []model.Painting{
			{WikiID: "P2", Museum: "M", ViewCount: 50},
			{WikiID: "P1", Museum: "M", ViewCount: 100},
		}
		joined := Join(paintings, NewMuseumIndex(museums))
		if len(joined) != 1 {
			t.Fatalf("expected 1 joined entry, got %d", len(joined))
		}
		if joined[0].Painting.WikiID != "P1" {
			t.Errorf("expected P1, got %s", joined[0].Painting.WikiID)
		}
	})

	t.Run("equal view counts keep input order", func(t *testing.T) {
		t.Parallel()

		paintings := []model.Painting{
			{WikiID: "first", Museum: "M", ViewCount: 7},
			{WikiID: "second", Museum: "M", ViewCount: 7},
		}
		joined := Join(paintings, NewMuseumIndex(museums))
		if len(joined) != 1 || joined[0].Painting.WikiID != "first" {
			t.Errorf("expected first, got %+v", joined)
		}
	})

	t.Run("unknown museums are dropped and output is ordered by views", func(t *testing.T) {
		t.Parallel()

		paintings := []model.Painting{
			{WikiID: "a", Museum: "M2", ViewCount: 1},
			{WikiID: "b", Museum: "Nowhere", ViewCount: 1000},
			{WikiID: "c", Museum: "M", ViewCount: 5},
		}
		joined := Join(paintings, NewMuseumIndex(museums))
		if len(joined) != 2 {
			t.Fatalf("expected 2 joined entries, got %d", len(joined))
		}
		if joined[0].Painting.WikiID != "c" || joined[1].Painting.WikiID != "a" {
			t.Errorf("unexpected order: %s, %s", joined[0].Painting.WikiID, joined[1].Painting.WikiID)
		}
		if joined[0].Museum.Name != "M" {
			t.Errorf("expected museum M, got %s", joined[0].Museum.Name)
		}
	})

	t.Run("input is not reordered", func(t *testing.T) {
		t.Parallel()

		paintings := []model.Painting{
			{WikiID: "low", ViewCount: 1},
			{WikiID: "high", ViewCount: 2},
		}
		_ = SortByViews(paintings)
		if paintings[0].WikiID != "low" {
			t.Error("expected SortByViews to leave its input alone")
		}
	})
}
