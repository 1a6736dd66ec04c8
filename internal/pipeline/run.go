package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/museumstyle/internal/model"
)

// Run is the state shared by the steps of one build.
type Run struct {
	// ID identifies the run.
	ID string

	// Museums and Paintings are filled by the load step.
	Museums   map[string]model.Museum
	Paintings []model.Painting

	// Joined is filled by the join step, in descending painting view count.
	Joined []model.JoinedEntry

	// Resolved is filled by the resolve step.
	Resolved []model.ResolvedEntry

	// Items is filled by the preview step and updated by the stylize step.
	Items []Item

	// Summary accumulates counts as steps run. The emit step completes it
	// with the dataset entries.
	Summary model.RunSummary

	// PerformedSteps lists the steps that completed, in order.
	PerformedSteps []string

	// Cancelled is set when the context was cancelled between steps.
	Cancelled bool

	// Err is the *StepError that stopped the run.
	Err error
}

// NewRun creates a run with a fresh random ID.
func NewRun() *Run {
	id := uuid.NewString()
	return &Run{
		ID: id,
		Summary: model.RunSummary{
			ID:        id,
			StartedAt: time.Now().UTC(),
		},
	}
}

// Item is a resolved entry whose previews were written.
type Item struct {
	model.ResolvedEntry

	// Width is the pixel width of the scaled museum preview.
	Width int

	// OrigFile, PaintingFile and StyledFile are file names in the results
	// directory.
	OrigFile     string
	PaintingFile string
	StyledFile   string

	// StylizeExitCode is set when the stylizer ran to completion.
	StylizeExitCode *int
}
