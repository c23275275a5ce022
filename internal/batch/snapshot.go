package batch

import (
	"context"
	"time"
)

// RunState is the run lifecycle. A controller starts Idle, moves to Running
// on Start, and reaches Completed when every item resolved naturally or
// Stopped when a stop request cut the run short.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateStopping  RunState = "stopping"
	StateStopped   RunState = "stopped"
	StateCompleted RunState = "completed"
)

// PDFOutcome is the terminal disposition of a directory's PDF assembly.
type PDFOutcome string

const (
	PDFCreated  PDFOutcome = "created"
	PDFDisabled PDFOutcome = "disabled"
	PDFNoOutput PDFOutcome = "no_output"
	PDFFailed   PDFOutcome = "failed"
)

// PDFResult reports assembly for one directory group.
type PDFResult struct {
	Group   string
	Outcome PDFOutcome
	Path    string
	Pages   int
	Message string
}

// Sink receives item results as they resolve and performs per-directory
// post-processing. assemble.Aggregator is the production implementation.
type Sink interface {
	Begin(ctx context.Context, plan *Plan, rc RunConfig)
	Accept(ctx context.Context, res ItemResult)
	Finish(ctx context.Context) []PDFResult
}

// Recorder persists finished runs. history.Store is the production
// implementation; a nil recorder disables persistence.
type Recorder interface {
	RecordRun(ctx context.Context, snap Snapshot, rc RunConfig) error
}

// Counts tallies item outcomes.
type Counts struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Pending   int
}

// ItemFailure is one failed item surfaced in the run summary: which input
// failed and why.
type ItemFailure struct {
	InputPath string        `json:"input_path"`
	Reason    FailureReason `json:"reason"`
	Message   string        `json:"message,omitempty"`
}

// DirectoryStatus is the per-directory view inside a Snapshot.
type DirectoryStatus struct {
	SourceDir  string
	Group      string
	Unreadable bool
	Counts     Counts
	Failures   []ItemFailure
	PDF        PDFOutcome
	PDFPath    string
	PDFPages   int
	PDFMessage string
}

// Snapshot is a point-in-time copy of run progress. It is safe to retain;
// nothing in it aliases controller state.
type Snapshot struct {
	RunID       string
	State       RunState
	StartedAt   time.Time
	FinishedAt  time.Time
	Elapsed     time.Duration
	Directories []DirectoryStatus
	Totals      Counts
}
