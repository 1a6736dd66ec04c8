package model

import "time"

// RunSummary describes the outcome of one dataset build.
type RunSummary struct {
	// ID identifies the run in the asset index.
	ID string `json:"id"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Museums and Paintings count the loaded entities.
	Museums   int `json:"museums"`
	Paintings int `json:"paintings"`

	// Joined counts paintings that claimed a museum.
	Joined int `json:"joined"`

	// Unresolved counts joined entries dropped for a missing image.
	Unresolved int `json:"unresolved"`

	// PreviewFailures counts entries dropped because a preview could not
	// be written.
	PreviewFailures int `json:"preview_failures"`

	// Retained counts entries written to the dataset.
	Retained int `json:"retained"`

	// Stylized counts stylizer runs that exited with status 0.
	Stylized int `json:"stylized"`

	// StylizeSkipped counts entries whose styled output already existed.
	StylizeSkipped int `json:"stylize_skipped"`

	// StylizeFailures counts stylizer runs that failed to start or exited
	// with a non-zero status.
	StylizeFailures int `json:"stylize_failures"`

	// DatasetPath is the dataset file written by the run.
	DatasetPath string `json:"dataset_path"`

	// Entries is the emitted dataset.
	Entries []DatasetEntry `json:"-"`
}

// Duration returns how long the run took.
func (s *RunSummary) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Dropped returns the number of joined entries missing from the dataset.
func (s *RunSummary) Dropped() int {
	return s.Unresolved + s.PreviewFailures
}
