// Package history records pipeline runs so past invocations can be listed
// with `csvcut history`. Recording is optional: without a database the
// NopRecorder is used and runs are only logged.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvcut/internal/core"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run describes one invocation of the pipeline.
type Run struct {
	ID        uuid.UUID
	Input     string
	Output    string
	Columns   []string
	Rows      int
	Status    Status
	ErrorCode string
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// NewRun starts a run record with a fresh ID.
func NewRun(input, output string) *Run {
	return &Run{
		ID:        uuid.New(),
		Input:     input,
		Output:    output,
		StartedAt: time.Now().UTC(),
	}
}

// Finish fills in the outcome of the run from the pipeline result.
func (r *Run) Finish(res core.Result, err error) {
	r.Duration = time.Since(r.StartedAt)
	r.Columns = res.Columns
	r.Rows = res.Rows
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		r.ErrorCode = core.MapError(err).Code
		return
	}
	r.Status = StatusSucceeded
}

// Recorder persists runs and lists recent ones, newest first.
type Recorder interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
}

// NopRecorder discards runs.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Run) error { return nil }

func (NopRecorder) Recent(context.Context, int) ([]Run, error) { return nil, nil }
