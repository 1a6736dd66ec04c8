package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Step is one stage of a build. Do returns an error only for failures that
// must stop the build; per-item failures are logged and counted in
// run.Summary.
type Step interface {
	Do(ctx context.Context, run *Run) error
	Name() string
}

// StepError reports the step that stopped a run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline runs its steps in order and stops at the first failure.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Add appends steps.
func (p *Pipeline) Add(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against run. The context is checked before each
// step; a cancelled run sets run.Cancelled and returns the context error.
// A failing step is recorded in run.Err and returned as a *StepError.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("build cancelled", "before", step.Name(), "run", run.ID)
			run.Cancelled = true
			return err
		}

		start := time.Now()
		err := step.Do(ctx, run)
		elapsed := time.Since(start)

		if err != nil {
			run.Err = &StepError{Step: step.Name(), Err: err}
			p.logger.Error("step failed", "step", step.Name(), "run", run.ID, "error", err)
			return run.Err
		}

		run.PerformedSteps = append(run.PerformedSteps, step.Name())
		p.logger.Info("step completed",
			"step", step.Name(),
			"run", run.ID,
			"elapsed", elapsed.Round(time.Millisecond),
		)
	}
	return nil
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Names returns the step names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
