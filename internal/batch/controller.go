package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"magnify/internal/config"
	"magnify/internal/logging"
	"magnify/internal/services"
)

const lockFileName = ".magnify.lock"

// Controller owns the run lifecycle. At most one run is active at a time;
// a file lock on the output base additionally fences concurrent processes
// targeting the same output tree.
type Controller struct {
	cfg      *config.Config
	invoker  Invoker
	sink     Sink
	recorder Recorder
	logger   *slog.Logger

	mu    sync.Mutex
	state RunState
	run   *activeRun
}

type activeRun struct {
	id         string
	rc         RunConfig
	plan       *Plan
	startedAt  time.Time
	finishedAt time.Time
	cancel     context.CancelFunc
	lock       *flock.Flock
	byGroup    map[string]int
	dirs       []DirectoryStatus
	totals     Counts
	done       chan struct{}
}

// NewController wires a controller from its collaborators. recorder may be
// nil to disable run persistence.
func NewController(cfg *config.Config, invoker Invoker, sink Sink, recorder Recorder, logger *slog.Logger) *Controller {
	return &Controller{
		cfg:      cfg,
		invoker:  invoker,
		sink:     sink,
		recorder: recorder,
		logger:   logging.NewComponentLogger(logger, "batch"),
		state:    StateIdle,
	}
}

// Start validates rc, scans every input directory to fix the item
// inventory, and launches the worker pool. It returns once the run is
// underway; use Wait or Snapshot to follow progress. Starting while a run
// is active is an error and leaves that run untouched.
func (c *Controller) Start(ctx context.Context, rc RunConfig) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning || c.state == StateStopping {
		return "", services.Wrap(services.ErrValidation, "batch", "start", "a run is already in progress", nil)
	}
	if err := ValidateRunConfig(c.cfg, rc); err != nil {
		return "", err
	}
	if err := os.MkdirAll(rc.OutputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "batch", "start", fmt.Sprintf("cannot create output directory %s", rc.OutputDir), err)
	}

	lock := flock.New(filepath.Join(rc.OutputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "batch", "start", "cannot acquire output lock", err)
	}
	if !locked {
		return "", services.Wrap(services.ErrValidation, "batch", "start", fmt.Sprintf("output directory %s is locked by another run", rc.OutputDir), nil)
	}

	plan := BuildPlan(c.cfg, rc, c.logger)
	runID := uuid.NewString()
	runCtx, cancel := context.WithCancel(services.WithRunID(context.Background(), runID))
	run := &activeRun{
		id:        runID,
		rc:        rc,
		plan:      plan,
		startedAt: time.Now(),
		cancel:    cancel,
		lock:      lock,
		byGroup:   make(map[string]int, len(plan.Dirs)),
		dirs:      make([]DirectoryStatus, 0, len(plan.Dirs)),
		done:      make(chan struct{}),
	}
	for i, dp := range plan.Dirs {
		status := DirectoryStatus{
			SourceDir:  dp.SourceDir,
			Group:      dp.GroupName,
			Unreadable: dp.ScanErr != nil,
			Counts:     Counts{Total: len(dp.Items), Pending: len(dp.Items)},
		}
		run.byGroup[dp.GroupName] = i
		run.dirs = append(run.dirs, status)
		run.totals.Total += len(dp.Items)
		run.totals.Pending += len(dp.Items)
	}

	c.state = StateRunning
	c.run = run
	c.logger.Info("run started",
		logging.FieldRunID, run.id,
		"directories", len(plan.Dirs),
		"items", plan.TotalItems,
		"model", rc.Model,
		"scale", rc.Scale,
		"workers", c.cfg.Workflow.Workers)

	c.sink.Begin(runCtx, plan, rc)
	go c.execute(runCtx, run)
	return run.id, nil
}

// Stop requests cooperative shutdown of the active run. Items already
// handed to the engine finish on their own; everything still queued resolves
// as skipped. Stop never blocks and is a no-op outside of Running.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return
	}
	c.state = StateStopping
	c.run.cancel()
	c.logger.Info("stop requested", logging.FieldRunID, c.run.id)
}

// Wait blocks until the active run finishes or ctx expires. It returns
// immediately when no run is active.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()
	if run == nil {
		return nil
	}
	select {
	case <-run.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State reports the current lifecycle state.
func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a detached copy of the current run's progress. Outside
// of any run it reports the last finished run, or an idle snapshot if none.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{State: c.state}
	if c.run == nil {
		return snap
	}
	run := c.run
	snap.RunID = run.id
	snap.StartedAt = run.startedAt
	if run.finishedAt.IsZero() {
		snap.Elapsed = time.Since(run.startedAt)
	} else {
		snap.FinishedAt = run.finishedAt
		snap.Elapsed = run.finishedAt.Sub(run.startedAt)
	}
	snap.Totals = run.totals
	snap.Directories = copyDirectories(run.dirs)
	return snap
}

// execute consumes results until the pool drains, then finishes assembly,
// records the run, and settles the terminal state.
func (c *Controller) execute(runCtx context.Context, run *activeRun) {
	results := make(chan ItemResult, c.cfg.Workflow.Workers)
	sched := &scheduler{
		workers: c.cfg.Workflow.Workers,
		invoker: c.invoker,
		rc:      run.rc,
		logger:  c.logger,
	}
	go sched.run(runCtx, run.plan, results)

	// Assembly must outlive a stop request; directories whose items all
	// resolved before the stop still get their PDF.
	sinkCtx := context.Background()
	for res := range results {
		c.apply(run, res)
		c.sink.Accept(sinkCtx, res)
	}
	pdfs := c.sink.Finish(sinkCtx)

	c.mu.Lock()
	for _, pdf := range pdfs {
		if i, ok := run.byGroup[pdf.Group]; ok {
			run.dirs[i].PDF = pdf.Outcome
			run.dirs[i].PDFPath = pdf.Path
			run.dirs[i].PDFPages = pdf.Pages
			run.dirs[i].PDFMessage = pdf.Message
		}
	}
	run.finishedAt = time.Now()
	if c.state == StateStopping {
		c.state = StateStopped
	} else {
		c.state = StateCompleted
	}
	final := c.state
	snap := c.snapshotLocked(run, final)
	c.mu.Unlock()

	if c.recorder != nil {
		if err := c.recorder.RecordRun(context.Background(), snap, run.rc); err != nil {
			c.logger.Warn("run history not recorded", logging.FieldRunID, run.id, "error", err)
		}
	}
	if err := run.lock.Unlock(); err != nil {
		c.logger.Warn("output lock release failed", logging.FieldRunID, run.id, "error", err)
	}
	c.logger.Info("run finished",
		logging.FieldRunID, run.id,
		"state", string(final),
		"succeeded", snap.Totals.Succeeded,
		"failed", snap.Totals.Failed,
		"skipped", snap.Totals.Skipped,
		"elapsed", snap.Elapsed.Round(time.Millisecond).String())
	close(run.done)
}

// apply folds one result into the run tallies.
func (c *Controller) apply(run *activeRun, res ItemResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := run.byGroup[res.Item.Group]
	if !ok {
		return
	}
	counts := &run.dirs[i].Counts
	counts.Pending--
	run.totals.Pending--
	switch res.Outcome {
	case OutcomeSucceeded:
		counts.Succeeded++
		run.totals.Succeeded++
	case OutcomeFailed:
		counts.Failed++
		run.totals.Failed++
		run.dirs[i].Failures = append(run.dirs[i].Failures, ItemFailure{
			InputPath: res.Item.InputPath,
			Reason:    res.Reason,
			Message:   res.Message,
		})
	case OutcomeSkipped:
		counts.Skipped++
		run.totals.Skipped++
	}
}

// snapshotLocked builds a snapshot for a run that has just settled. Caller
// holds c.mu.
func (c *Controller) snapshotLocked(run *activeRun, state RunState) Snapshot {
	snap := Snapshot{
		RunID:      run.id,
		State:      state,
		StartedAt:  run.startedAt,
		FinishedAt: run.finishedAt,
		Elapsed:    run.finishedAt.Sub(run.startedAt),
		Totals:     run.totals,
	}
	snap.Directories = copyDirectories(run.dirs)
	return snap
}

// copyDirectories detaches snapshot directory entries from the live run,
// including the per-directory failure lists that apply keeps appending to.
func copyDirectories(dirs []DirectoryStatus) []DirectoryStatus {
	out := make([]DirectoryStatus, len(dirs))
	copy(out, dirs)
	for i := range out {
		if len(dirs[i].Failures) > 0 {
			out[i].Failures = append([]ItemFailure(nil), dirs[i].Failures...)
		}
	}
	return out
}
