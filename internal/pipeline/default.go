package pipeline

import (
	"log/slog"

	"github.com/nao1215/museumstyle/internal/imaging"
	"github.com/nao1215/museumstyle/internal/report"
)

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// ResultsDir receives previews, styled images and the dataset.
	ResultsDir string

	// TargetWidth is the longer side of the museum preview in pixels.
	TargetWidth int

	// Variable is the JavaScript variable the dataset is assigned to.
	Variable string

	// DatasetFile and SummaryFile are file names in ResultsDir.
	DatasetFile string
	SummaryFile string

	// Index is optional. When set, credits are attached and runs recorded.
	Index Index

	// Logger is passed to every step.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineTargetWidth sets the preview size.
func WithPipelineTargetWidth(width int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.TargetWidth = width
	}
}

// WithPipelineVariable sets the dataset variable name.
func WithPipelineVariable(name string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Variable = name
	}
}

// WithPipelineSummaryFile sets the summary file name. Empty disables it.
func WithPipelineSummaryFile(name string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SummaryFile = name
	}
}

// WithPipelineIndex sets the asset index.
func WithPipelineIndex(index Index) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Index = index
	}
}

// WithPipelineLogger sets the logger used by the steps.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates a pipeline with all build steps in order:
// load, join, resolve, preview, stylize and emit. The stylize step is left
// out when stylizer is nil.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineTargetWidth, etc).
func DefaultPipeline(
	loader EntityLoader,
	images ImageResolver,
	stylizer Stylizer,
	resultsDir string,
	pipelineOpts []Option,
	configOpts ...DefaultPipelineOption,
) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		ResultsDir:  resultsDir,
		TargetWidth: imaging.DefaultTargetWidth,
		Variable:    report.DefaultVariable,
		DatasetFile: DefaultDatasetFile,
		SummaryFile: DefaultSummaryFile,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	emitOpts := []EmitStepOption{
		WithDatasetFile(cfg.DatasetFile),
		WithSummaryFile(cfg.SummaryFile),
		WithVariable(cfg.Variable),
		WithEmitLogger(cfg.Logger),
	}
	if cfg.Index != nil {
		emitOpts = append(emitOpts, WithIndex(cfg.Index))
	}

	p.Add(
		NewLoadStep(loader, cfg.Logger),
		NewJoinStep(cfg.Logger),
		NewResolveStep(images, cfg.Logger),
		NewPreviewStep(cfg.ResultsDir, cfg.TargetWidth, cfg.Logger),
	)
	if stylizer != nil {
		p.Add(NewStylizeStep(stylizer, cfg.ResultsDir, cfg.Logger))
	}
	p.Add(NewEmitStep(cfg.ResultsDir, emitOpts...))

	return p
}
