package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/museumstyle/internal/database"
	"github.com/nao1215/museumstyle/internal/imaging"
	"github.com/nao1215/museumstyle/internal/model"
	"github.com/nao1215/museumstyle/internal/report"
	"github.com/nao1215/museumstyle/internal/resolver"
	"github.com/nao1215/museumstyle/internal/stylize"
)

// EntityLoader loads the museum and painting collections.
type EntityLoader interface {
	LoadMuseums(ctx context.Context) (map[string]model.Museum, error)
	LoadPaintings(ctx context.Context) ([]model.Painting, error)
}

// ImageResolver turns an image reference into a local file.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (path string, ok bool)
}

// Stylizer runs one style transfer job.
type Stylizer interface {
	Run(ctx context.Context, job stylize.Job) (exitCode int, err error)
}

// Index provides image credits and stores run history.
type Index interface {
	GetAsset(ctx context.Context, name string) (model.Asset, error)
	SaveRun(ctx context.Context, run database.Run) (database.Run, error)
}

// LoadStep loads museums and paintings.
type LoadStep struct {
	loader EntityLoader
	logger *slog.Logger
}

// NewLoadStep creates a load step.
func NewLoadStep(loader EntityLoader, logger *slog.Logger) *LoadStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadStep{loader: loader, logger: logger}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, run *Run) error {
	museums, err := s.loader.LoadMuseums(ctx)
	if err != nil {
		return fmt.Errorf("failed to load museums: %w", err)
	}
	paintings, err := s.loader.LoadPaintings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load paintings: %w", err)
	}

	run.Museums = museums
	run.Paintings = paintings
	run.Summary.Museums = len(museums)
	run.Summary.Paintings = len(paintings)

	s.logger.Info("entities loaded", "museums", len(museums), "paintings", len(paintings))
	return nil
}

// JoinStep pairs paintings with museums.
type JoinStep struct {
	logger *slog.Logger
}

// NewJoinStep creates a join step.
func NewJoinStep(logger *slog.Logger) *JoinStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &JoinStep{logger: logger}
}

// Name returns the step name.
func (s *JoinStep) Name() string {
	return "join"
}

// Do executes the join step.
func (s *JoinStep) Do(_ context.Context, run *Run) error {
	idx := NewMuseumIndex(run.Museums)
	run.Joined = Join(run.Paintings, idx)
	run.Summary.Joined = len(run.Joined)

	s.logger.Info("paintings joined",
		"joined", len(run.Joined),
		"unclaimed_museums", idx.Len(),
	)
	return nil
}

// ResolveStep downloads the painting and museum image of every joined entry.
type ResolveStep struct {
	resolver ImageResolver
	logger   *slog.Logger
}

// NewResolveStep creates a resolve step.
func NewResolveStep(r ImageResolver, logger *slog.Logger) *ResolveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveStep{resolver: r, logger: logger}
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do executes the resolve step. Entries with a missing image are dropped.
func (s *ResolveStep) Do(ctx context.Context, run *Run) error {
	run.Resolved = run.Resolved[:0]
	for _, entry := range run.Joined {
		if err := ctx.Err(); err != nil {
			return err
		}

		paintingPath, paintingOK := s.resolver.Resolve(ctx, entry.Painting.Image)
		museumPath, museumOK := s.resolver.Resolve(ctx, entry.Museum.Image)
		if !paintingOK || !museumOK {
			s.logger.Info("entry dropped: image not resolved",
				"museum", entry.Museum.Name,
				"painting", entry.Painting.Name,
				"painting_image", paintingOK,
				"museum_image", museumOK,
			)
			run.Summary.Unresolved++
			continue
		}

		run.Resolved = append(run.Resolved, model.ResolvedEntry{
			JoinedEntry:       entry,
			PaintingImagePath: paintingPath,
			MuseumImagePath:   museumPath,
		})
	}
	return nil
}

// PreviewStep writes scaled copies of both images into the results directory.
type PreviewStep struct {
	resultsDir  string
	targetWidth int
	logger      *slog.Logger
}

// NewPreviewStep creates a preview step. The longer side of each museum
// image is scaled to targetWidth and the painting is scaled by the same
// factor.
func NewPreviewStep(resultsDir string, targetWidth int, logger *slog.Logger) *PreviewStep {
	if logger == nil {
		logger = slog.Default()
	}
	if targetWidth <= 0 {
		targetWidth = imaging.DefaultTargetWidth
	}
	return &PreviewStep{resultsDir: resultsDir, targetWidth: targetWidth, logger: logger}
}

// Name returns the step name.
func (s *PreviewStep) Name() string {
	return "preview"
}

// Do executes the preview step. An entry whose previews cannot be written
// is dropped.
func (s *PreviewStep) Do(ctx context.Context, run *Run) error {
	if err := os.MkdirAll(s.resultsDir, 0750); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	run.Items = run.Items[:0]
	for _, entry := range run.Resolved {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := s.preview(entry)
		if err != nil {
			s.logger.Warn("entry dropped: preview failed",
				"museum", entry.Museum.Name,
				"error", err,
			)
			run.Summary.PreviewFailures++
			continue
		}
		run.Items = append(run.Items, item)
	}
	return nil
}

func (s *PreviewStep) preview(entry model.ResolvedEntry) (Item, error) {
	museumImage, err := imaging.Load(entry.MuseumImagePath)
	if err != nil {
		return Item{}, err
	}
	paintingImage, err := imaging.Load(entry.PaintingImagePath)
	if err != nil {
		return Item{}, err
	}

	bounds := museumImage.Bounds()
	scale, err := imaging.ScaleFactor(s.targetWidth, bounds.Dx(), bounds.Dy())
	if err != nil {
		return Item{}, err
	}

	base := SafeName(entry.Museum.Name)
	item := Item{
		ResolvedEntry: entry,
		Width:         imaging.ScaledLength(bounds.Dx(), scale),
		OrigFile:      base + OrigSuffix,
		PaintingFile:  base + PaintingSuffix,
		StyledFile:    base + StyledSuffix,
	}

	if err := imaging.SaveScaled(museumImage, filepath.Join(s.resultsDir, item.OrigFile), scale); err != nil {
		return Item{}, err
	}
	if err := imaging.SaveScaled(paintingImage, filepath.Join(s.resultsDir, item.PaintingFile), scale); err != nil {
		return Item{}, err
	}
	return item, nil
}

// StylizeStep runs the stylizer for every item without a styled image.
type StylizeStep struct {
	stylizer   Stylizer
	resultsDir string
	logger     *slog.Logger
}

// NewStylizeStep creates a stylize step.
func NewStylizeStep(stylizer Stylizer, resultsDir string, logger *slog.Logger) *StylizeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &StylizeStep{stylizer: stylizer, resultsDir: resultsDir, logger: logger}
}

// Name returns the step name.
func (s *StylizeStep) Name() string {
	return "stylize"
}

// Do executes the stylize step. The outcome of a run never removes an item
// from the dataset.
func (s *StylizeStep) Do(ctx context.Context, run *Run) error {
	for i := range run.Items {
		item := &run.Items[i]

		output, err := filepath.Abs(filepath.Join(s.resultsDir, item.StyledFile))
		if err != nil {
			return fmt.Errorf("failed to build output path: %w", err)
		}
		if _, err := os.Stat(output); err == nil {
			s.logger.Debug("styled image exists", "path", output)
			run.Summary.StylizeSkipped++
			continue
		}

		code, err := s.stylizer.Run(ctx, stylize.Job{
			Content: item.MuseumImagePath,
			Style:   item.PaintingImagePath,
			Output:  output,
			Width:   item.Width,
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.logger.Warn("stylizer did not run", "museum", item.Museum.Name, "error", err)
			run.Summary.StylizeFailures++
			continue
		}

		item.StylizeExitCode = &code
		if code == 0 {
			run.Summary.Stylized++
		} else {
			run.Summary.StylizeFailures++
		}
	}
	return nil
}

// Default output file names.
const (
	DefaultDatasetFile = "museums.js"
	DefaultSummaryFile = "summary.md"
)

// EmitStep writes the dataset, the Markdown summary and the run history.
type EmitStep struct {
	resultsDir  string
	datasetFile string
	summaryFile string
	variable    string
	index       Index
	logger      *slog.Logger
}

// EmitStepOption configures an EmitStep.
type EmitStepOption func(*EmitStep)

// WithDatasetFile sets the dataset file name.
func WithDatasetFile(name string) EmitStepOption {
	return func(s *EmitStep) {
		s.datasetFile = name
	}
}

// WithSummaryFile sets the summary file name. An empty name disables the
// summary.
func WithSummaryFile(name string) EmitStepOption {
	return func(s *EmitStep) {
		s.summaryFile = name
	}
}

// WithVariable sets the JavaScript variable the dataset is assigned to.
func WithVariable(name string) EmitStepOption {
	return func(s *EmitStep) {
		s.variable = name
	}
}

// WithIndex attaches image credits from index and records the run in it.
func WithIndex(index Index) EmitStepOption {
	return func(s *EmitStep) {
		s.index = index
	}
}

// WithEmitLogger sets a custom logger for the emit step.
func WithEmitLogger(logger *slog.Logger) EmitStepOption {
	return func(s *EmitStep) {
		s.logger = logger
	}
}

// NewEmitStep creates an emit step writing into resultsDir.
func NewEmitStep(resultsDir string, opts ...EmitStepOption) *EmitStep {
	s := &EmitStep{
		resultsDir:  resultsDir,
		datasetFile: DefaultDatasetFile,
		summaryFile: DefaultSummaryFile,
		variable:    report.DefaultVariable,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the step name.
func (s *EmitStep) Name() string {
	return "emit"
}

// Do executes the emit step. Failing to write the dataset is fatal; the
// summary and the run history are best effort.
func (s *EmitStep) Do(ctx context.Context, run *Run) error {
	entries := make([]model.DatasetEntry, 0, len(run.Items))
	for _, item := range run.Items {
		entries = append(entries, s.datasetEntry(ctx, item))
	}

	datasetPath, err := filepath.Abs(filepath.Join(s.resultsDir, s.datasetFile))
	if err != nil {
		return fmt.Errorf("failed to build dataset path: %w", err)
	}

	run.Summary.Entries = entries
	run.Summary.Retained = len(entries)
	run.Summary.DatasetPath = datasetPath
	run.Summary.FinishedAt = time.Now().UTC()

	if err := writeFile(datasetPath, func(f *os.File) error {
		_, err := report.NewDatasetWriter(f, report.WithVariable(s.variable)).Write(&run.Summary)
		return err
	}); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	s.logger.Info("dataset written", "path", datasetPath, "entries", len(entries))

	if s.summaryFile != "" {
		summaryPath := filepath.Join(s.resultsDir, s.summaryFile)
		if err := writeFile(summaryPath, func(f *os.File) error {
			_, err := report.NewMarkdownWriter(f).Write(&run.Summary)
			return err
		}); err != nil {
			s.logger.Warn("failed to write summary", "path", summaryPath, "error", err)
		}
	}

	if s.index != nil {
		if _, err := s.index.SaveRun(ctx, database.Run{
			ID:         run.ID,
			Timestamp:  run.Summary.FinishedAt,
			Joined:     run.Summary.Joined,
			Retained:   run.Summary.Retained,
			Stylized:   run.Summary.Stylized,
			OutputPath: datasetPath,
		}); err != nil {
			s.logger.Warn("failed to record run", "error", err)
		}
	}
	return nil
}

func (s *EmitStep) datasetEntry(ctx context.Context, item Item) model.DatasetEntry {
	return model.DatasetEntry{
		Painting:        item.Painting,
		Museum:          item.Museum,
		Geohash:         item.Museum.Location.Geohash(),
		Width:           item.Width,
		Orig:            item.OrigFile,
		PaintingPreview: item.PaintingFile,
		Styled:          item.StyledFile,
		StylizeExitCode: item.StylizeExitCode,
		PaintingCredit:  s.credit(ctx, item.Painting.Image),
		MuseumCredit:    s.credit(ctx, item.Museum.Image),
	}
}

// credit looks up the recorded credit of an image reference.
func (s *EmitStep) credit(ctx context.Context, ref string) *model.ImageCredit {
	if s.index == nil {
		return nil
	}
	asset, err := s.index.GetAsset(ctx, resolver.Normalize(ref))
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.logger.Debug("failed to look up image credit", "ref", ref, "error", err)
		}
		return nil
	}
	if asset.Credit.IsZero() {
		return nil
	}
	return &asset.Credit
}

// writeFile creates path and passes it to write, closing it afterwards.
func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path) //nolint:gosec // path is built from the results directory
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
