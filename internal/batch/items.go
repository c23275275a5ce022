package batch

import (
	"context"
	"errors"
	"time"

	"magnify/internal/engine"
)

// RunConfig captures the per-run parameters supplied by the caller. It is
// immutable once a run starts.
type RunConfig struct {
	InputDirs   []string
	OutputDir   string
	Scale       int
	Format      engine.Format
	Model       string
	GeneratePDF bool
}

// WorkItem identifies one image queued for upscaling. Each item belongs to
// exactly one directory group and is dispatched exactly once.
type WorkItem struct {
	Group      string // disambiguated output group name
	SourceDir  string
	InputPath  string
	OutputPath string
	Index      int // position within the group's discovery order
}

// Outcome is the terminal disposition of a WorkItem.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// FailureReason is the closed vocabulary of item failure causes.
type FailureReason string

const (
	ReasonNone              FailureReason = ""
	ReasonEngineNotFound    FailureReason = "engine_not_found"
	ReasonEngineTimeout     FailureReason = "engine_timeout"
	ReasonEngineNonZeroExit FailureReason = "engine_nonzero_exit"
	ReasonOutputMissing     FailureReason = "output_missing"
	ReasonInvokerCrashed    FailureReason = "invoker_crashed"
	ReasonCancelled         FailureReason = "cancelled"
)

// ItemResult is the terminal outcome of processing one WorkItem. Once
// reported it is read-only.
type ItemResult struct {
	Item     WorkItem
	Outcome  Outcome
	Reason   FailureReason
	ExitCode int
	Message  string
	Elapsed  time.Duration
}

// failureFor maps an invocation error to its reason and exit code. Unknown
// errors fall into the invoker-crashed bucket rather than propagating.
func failureFor(err error) (FailureReason, int) {
	var exitErr *engine.NonZeroExitError
	switch {
	case errors.Is(err, engine.ErrEngineNotFound):
		return ReasonEngineNotFound, 0
	case errors.Is(err, engine.ErrEngineTimeout):
		return ReasonEngineTimeout, 0
	case errors.As(err, &exitErr):
		return ReasonEngineNonZeroExit, exitErr.Code
	case errors.Is(err, engine.ErrOutputMissing):
		return ReasonOutputMissing, 0
	case errors.Is(err, context.Canceled):
		return ReasonCancelled, 0
	default:
		return ReasonInvokerCrashed, 0
	}
}
