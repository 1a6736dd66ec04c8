package pipeline

import (
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/museumstyle/internal/database"
	"github.com/nao1215/museumstyle/internal/model"
	"github.com/nao1215/museumstyle/internal/stylize"
)

// fakeLoader is a test helper that implements EntityLoader.
type fakeLoader struct {
	museums   map[string]model.Museum
	paintings []model.Painting
	err       error
}

func (f *fakeLoader) LoadMuseums(_ context.Context) (map[string]model.Museum, error) {
	return f.museums, f.err
}

func (f *fakeLoader) LoadPaintings(_ context.Context) ([]model.Painting, error) {
	return f.paintings, f.err
}

// fakeResolver is a test helper that implements ImageResolver.
type fakeResolver struct {
	paths map[string]string
	calls []string
}

func (f *fakeResolver) Resolve(_ context.Context, ref string) (string, bool) {
	f.calls = append(f.calls, ref)
	path, ok := f.paths[ref]
	return path, ok
}

// fakeStylizer is a test helper that implements Stylizer. It writes the
// output file so later runs see it.
type fakeStylizer struct {
	mu   sync.Mutex
	jobs []stylize.Job
	code int
	err  error
}

func (f *fakeStylizer) Run(_ context.Context, job stylize.Job) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	if f.err != nil {
		return -1, f.err
	}
	if f.code == 0 {
		if err := os.WriteFile(job.Output, []byte("styled"), 0600); err != nil {
			return -1, err
		}
	}
	return f.code, nil
}

// fakeIndex is a test helper that implements Index.
type fakeIndex struct {
	assets map[string]model.Asset
	runs   []database.Run
}

func (f *fakeIndex) GetAsset(_ context.Context, name string) (model.Asset, error) {
	asset, ok := f.assets[name]
	if !ok {
		return model.Asset{}, database.ErrNotFound
	}
	return asset, nil
}

func (f *fakeIndex) SaveRun(_ context.Context, run database.Run) (database.Run, error) {
	f.runs = append(f.runs, run)
	return run, nil
}

// writeImage writes a w×h image to dir/name, encoded by extension.
func writeImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if strings.HasSuffix(name, ".png") {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, nil)
	}
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func imageSize(t *testing.T, path string) (int, int) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return cfg.Width, cfg.Height
}

// TestLoadStep tests the load step.
func TestLoadStep(t *testing.T) {
	t.Parallel()

	t.Run("fills the run", func(t *testing.T) {
		t.Parallel()

		loader := &fakeLoader{
			museums:   map[string]model.Museum{"M": {Name: "M"}},
			paintings: []model.Painting{{WikiID: "P"}, {WikiID: "Q"}},
		}
		run := NewRun()
		if err := NewLoadStep(loader, nil).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Summary.Museums != 1 || run.Summary.Paintings != 2 {
			t.Errorf("unexpected counts %d/%d", run.Summary.Museums, run.Summary.Paintings)
		}
	})

	t.Run("errors are fatal", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("store unreachable")
		err := NewLoadStep(&fakeLoader{err: expectedErr}, nil).Do(context.Background(), NewRun())
		if !errors.Is(err, expectedErr) {
			t.Errorf("expected %v, got %v", expectedErr, err)
		}
	})
}

// TestResolveStep tests the resolve step.
func TestResolveStep(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{paths: map[string]string{
		"p1.jpg": "/cache/p1.jpg",
		"m1.jpg": "/cache/m1.jpg",
		"p2.jpg": "/cache/p2.jpg",
	}}

	run := NewRun()
	run.Joined = []model.JoinedEntry{
		{Painting: model.Painting{Image: "p1.jpg"}, Museum: model.Museum{Name: "M1", Image: "m1.jpg"}},
		{Painting: model.Painting{Image: "p2.jpg"}, Museum: model.Museum{Name: "M2"}},
		{Painting: model.Painting{Image: "gone.jpg"}, Museum: model.Museum{Name: "M3", Image: "m1.jpg"}},
	}

	if err := NewResolveStep(resolver, nil).Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Resolved) != 1 {
		t.Fatalf("expected 1 resolved entry, got %d", len(run.Resolved))
	}
	if run.Resolved[0].PaintingImagePath != "/cache/p1.jpg" || run.Resolved[0].MuseumImagePath != "/cache/m1.jpg" {
		t.Errorf("unexpected paths %+v", run.Resolved[0])
	}
	if run.Summary.Unresolved != 2 {
		t.Errorf("expected 2 unresolved, got %d", run.Summary.Unresolved)
	}
}

// TestPreviewStep tests preview generation.
func TestPreviewStep(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()
	results := filepath.Join(t.TempDir(), "results")
	museumPath := writeImage(t, cache, "museum.png", 1000, 500)
	paintingPath := writeImage(t, cache, "painting.jpg", 300, 300)

	run := NewRun()
	run.Resolved = []model.ResolvedEntry{
		{
			JoinedEntry:       model.JoinedEntry{Museum: model.Museum{Name: "Tate/Modern"}},
			PaintingImagePath: paintingPath,
			MuseumImagePath:   museumPath,
		},
		{
			JoinedEntry:       model.JoinedEntry{Museum: model.Museum{Name: "Broken"}},
			PaintingImagePath: paintingPath,
			MuseumImagePath:   filepath.Join(cache, "missing.jpg"),
		},
	}

	if err := NewPreviewStep(results, 400, nil).Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(run.Items))
	}
	if run.Summary.PreviewFailures != 1 {
		t.Errorf("expected 1 preview failure, got %d", run.Summary.PreviewFailures)
	}

	item := run.Items[0]
	if item.Width != 400 {
		t.Errorf("expected width 400, got %d", item.Width)
	}
	if item.OrigFile != "Tate_Modern-orig.jpg" || item.StyledFile != "Tate_Modern-styled.jpg" {
		t.Errorf("unexpected file names %q %q", item.OrigFile, item.StyledFile)
	}

	if w, h := imageSize(t, filepath.Join(results, item.OrigFile)); w != 400 || h != 200 {
		t.Errorf("expected museum preview 400x200, got %dx%d", w, h)
	}
	if w, h := imageSize(t, filepath.Join(results, item.PaintingFile)); w != 120 || h != 120 {
		t.Errorf("expected painting preview 120x120, got %dx%d", w, h)
	}
}

// TestStylizeStep tests stylizer invocation.
func TestStylizeStep(t *testing.T) {
	t.Parallel()

	newRun := func() *Run {
		run := NewRun()
		run.Items = []Item{{
			ResolvedEntry: model.ResolvedEntry{
				JoinedEntry:       model.JoinedEntry{Museum: model.Museum{Name: "Louvre"}},
				PaintingImagePath: "/cache/p.jpg",
				MuseumImagePath:   "/cache/m.jpg",
			},
			Width:      321,
			StyledFile: "Louvre-styled.jpg",
		}}
		return run
	}

	t.Run("runs once and skips existing output", func(t *testing.T) {
		t.Parallel()

		results := t.TempDir()
		stylizer := &fakeStylizer{}
		step := NewStylizeStep(stylizer, results, nil)

		run := newRun()
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stylizer.jobs) != 1 {
			t.Fatalf("expected 1 job, got %d", len(stylizer.jobs))
		}
		job := stylizer.jobs[0]
		if job.Content != "/cache/m.jpg" || job.Style != "/cache/p.jpg" || job.Width != 321 {
			t.Errorf("unexpected job %+v", job)
		}
		if job.Output != filepath.Join(results, "Louvre-styled.jpg") {
			t.Errorf("unexpected output %q", job.Output)
		}
		if run.Items[0].StylizeExitCode == nil || *run.Items[0].StylizeExitCode != 0 {
			t.Error("expected exit code 0 to be recorded")
		}
		if run.Summary.Stylized != 1 {
			t.Errorf("expected 1 stylized, got %d", run.Summary.Stylized)
		}

		rerun := newRun()
		if err := step.Do(context.Background(), rerun); err != nil {
			t.Fatal(err)
		}
		if len(stylizer.jobs) != 1 {
			t.Errorf("expected no new job, got %d jobs", len(stylizer.jobs))
		}
		if rerun.Summary.StylizeSkipped != 1 {
			t.Errorf("expected 1 skipped, got %d", rerun.Summary.StylizeSkipped)
		}
	})

	t.Run("failures keep the item", func(t *testing.T) {
		t.Parallel()

		run := newRun()
		if err := NewStylizeStep(&fakeStylizer{code: 1}, t.TempDir(), nil).Do(context.Background(), run); err != nil {
			t.Fatal(err)
		}
		if len(run.Items) != 1 || run.Items[0].StylizeExitCode == nil || *run.Items[0].StylizeExitCode != 1 {
			t.Errorf("expected item with exit code 1, got %+v", run.Items)
		}

		run = newRun()
		if err := NewStylizeStep(&fakeStylizer{err: errors.New("no python")}, t.TempDir(), nil).Do(context.Background(), run); err != nil {
			t.Fatal(err)
		}
		if run.Items[0].StylizeExitCode != nil {
			t.Error("expected no exit code when the stylizer did not run")
		}
		if run.Summary.StylizeFailures != 1 {
			t.Errorf("expected 1 failure, got %d", run.Summary.StylizeFailures)
		}
	})
}

// TestEmitStep tests dataset output.
func TestEmitStep(t *testing.T) {
	t.Parallel()

	results := t.TempDir()
	index := &fakeIndex{assets: map[string]model.Asset{
		"Mona_Lisa.jpg": {Credit: model.ImageCredit{SourceURL: "https://commons.wikimedia.org/wiki/File:Mona_Lisa.jpg", Artist: "Leonardo"}},
	}}

	run := NewRun()
	run.Summary.Joined = 1
	run.Items = []Item{{
		ResolvedEntry: model.ResolvedEntry{JoinedEntry: model.JoinedEntry{
			Painting: model.Painting{WikiID: "Mona Lisa", Name: "Mona Lisa", Image: "Mona Lisa.jpg", Museum: "Louvre", ViewCount: 9},
			Museum:   model.Museum{Name: "Louvre", Location: model.Location{Lat: 48.86, Lng: 2.33}, Image: "Louvre.jpg"},
		}},
		Width:      400,
		OrigFile:   "Louvre-orig.jpg",
		StyledFile: "Louvre-styled.jpg",
	}}

	step := NewEmitStep(results, WithIndex(index), WithVariable("data"))
	if err := step.Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(results, DefaultDatasetFile))
	if err != nil {
		t.Fatalf("expected dataset file: %v", err)
	}
	dataset := string(content)
	if !strings.HasPrefix(dataset, "data = \n[") || !strings.HasSuffix(dataset, "];") {
		t.Errorf("unexpected dataset framing: %q", dataset)
	}
	if !strings.Contains(dataset, `"artist": "Leonardo"`) {
		t.Error("expected painting credit in dataset")
	}
	if !strings.Contains(dataset, `"geohash": "u09`) {
		t.Error("expected geohash in dataset")
	}

	if _, err := os.Stat(filepath.Join(results, DefaultSummaryFile)); err != nil {
		t.Errorf("expected summary file: %v", err)
	}

	if run.Summary.Retained != 1 || run.Summary.FinishedAt.IsZero() {
		t.Errorf("unexpected summary %+v", run.Summary)
	}
	if len(index.runs) != 1 || index.runs[0].ID != run.ID || index.runs[0].Retained != 1 {
		t.Errorf("expected run to be recorded, got %+v", index.runs)
	}
	if run.Summary.Entries[0].MuseumCredit != nil {
		t.Error("expected no museum credit for unknown asset")
	}
}

// TestDefaultPipeline tests the assembled pipeline.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("step order", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(&fakeLoader{}, &fakeResolver{}, &fakeStylizer{}, t.TempDir(), nil)
		expected := []string{"load", "join", "resolve", "preview", "stylize", "emit"}
		if got := strings.Join(p.Names(), ","); got != strings.Join(expected, ",") {
			t.Errorf("expected %v, got %v", expected, p.Names())
		}

		p = DefaultPipeline(&fakeLoader{}, &fakeResolver{}, nil, t.TempDir(), nil)
		if p.Len() != 5 {
			t.Errorf("expected 5 steps without stylizer, got %d", p.Len())
		}
	})

	t.Run("end to end", func(t *testing.T) {
		t.Parallel()

		cache := t.TempDir()
		results := filepath.Join(t.TempDir(), "results")

		loader := &fakeLoader{
			museums: map[string]model.Museum{
				"M": {Name: "M", Image: "m.jpg", Location: model.Location{Lat: 1, Lng: 2}},
			},
			paintings: []model.Painting{
				{WikiID: "P1", Name: "P1", Image: "p1.jpg", Museum: "M", ViewCount: 100},
				{WikiID: "P2", Name: "P2", Image: "p2.jpg", Museum: "M", ViewCount: 50},
			},
		}
		resolver := &fakeResolver{paths: map[string]string{
			"m.jpg":  writeImage(t, cache, "m.jpg", 800, 600),
			"p1.jpg": writeImage(t, cache, "p1.jpg", 200, 100),
			"p2.jpg": writeImage(t, cache, "p2.jpg", 200, 100),
		}}
		stylizer := &fakeStylizer{}

		p := DefaultPipeline(loader, resolver, stylizer, results, nil, WithPipelineTargetWidth(400))
		run := NewRun()
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(run.Summary.Entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(run.Summary.Entries))
		}
		entry := run.Summary.Entries[0]
		if entry.Painting.WikiID != "P1" {
			t.Errorf("expected P1, got %s", entry.Painting.WikiID)
		}
		if entry.Width != 400 {
			t.Errorf("expected width 400, got %d", entry.Width)
		}
		for _, ref := range resolver.calls {
			if ref == "p2.jpg" {
				t.Error("expected the unjoined painting never to be resolved")
			}
		}
		if len(stylizer.jobs) != 1 {
			t.Errorf("expected 1 stylizer job, got %d", len(stylizer.jobs))
		}
		if len(run.PerformedSteps) != 6 {
			t.Errorf("expected 6 performed steps, got %v", run.PerformedSteps)
		}
	})
}
