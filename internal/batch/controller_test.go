package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"magnify/internal/engine"
	"magnify/internal/logging"
	"magnify/internal/services"
	"magnify/internal/testsupport"
)

// nopSink satisfies Sink for controller tests that do not exercise PDF
// assembly.
type nopSink struct {
	mu       sync.Mutex
	accepted int
	pdfs     []PDFResult
}

func (s *nopSink) Begin(context.Context, *Plan, RunConfig) {}

func (s *nopSink) Accept(_ context.Context, _ ItemResult) {
	s.mu.Lock()
	s.accepted++
	s.mu.Unlock()
}

func (s *nopSink) Finish(context.Context) []PDFResult { return s.pdfs }

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestControllerCompletesRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := t.TempDir()
	second := t.TempDir()
	testsupport.WriteImages(t, first, "a.png", "b.png", "c.png")
	testsupport.WriteImages(t, second, "x.png")

	sink := &nopSink{}
	ctrl := NewController(cfg, &fakeInvoker{}, sink, nil, logging.NewNop())

	runID, err := ctrl.Start(context.Background(), RunConfig{
		InputDirs: []string{first, second},
		OutputDir: cfg.Paths.OutputDir,
		Scale:     4,
		Format:    engine.FormatPNG,
		Model:     "remacri-4x",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if runID == "" {
		t.Fatal("expected a run id")
	}
	if err := ctrl.Wait(waitCtx(t)); err != nil {
		t.Fatalf("wait: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.State != StateCompleted {
		t.Fatalf("state = %s, want completed", snap.State)
	}
	if snap.Totals.Succeeded != 4 || snap.Totals.Pending != 0 {
		t.Fatalf("totals = %+v", snap.Totals)
	}
	if len(snap.Directories) != 2 {
		t.Fatalf("directories = %d, want 2", len(snap.Directories))
	}
	if snap.Directories[0].Counts.Succeeded != 3 || snap.Directories[1].Counts.Succeeded != 1 {
		t.Fatalf("per-directory counts wrong: %+v", snap.Directories)
	}
	if sink.accepted != 4 {
		t.Fatalf("sink saw %d results, want 4", sink.accepted)
	}
}

func TestControllerStopSkipsQueuedItems(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(1))
	dir := t.TempDir()
	testsupport.WriteImages(t, dir, "a.png", "b.png", "c.png", "d.png")

	started := make(chan struct{}, 1)
	proceed := make(chan struct{})
	inv := &fakeInvoker{fn: func(context.Context, engine.Request) error {
		started <- struct{}{}
		<-proceed
		return nil
	}}
	ctrl := NewController(cfg, inv, &nopSink{}, nil, logging.NewNop())

	_, err := ctrl.Start(context.Background(), RunConfig{
		InputDirs: []string{dir},
		OutputDir: cfg.Paths.OutputDir,
		Scale:     4,
		Format:    engine.FormatPNG,
		Model:     "remacri-4x",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	<-started
	ctrl.Stop()
	if got := ctrl.State(); got != StateStopping {
		t.Fatalf("state after stop = %s, want stopping", got)
	}
	ctrl.Stop() // idempotent
	close(proceed)

	if err := ctrl.Wait(waitCtx(t)); err != nil {
		t.Fatalf("wait: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.State != StateStopped {
		t.Fatalf("state = %s, want stopped", snap.State)
	}
	if snap.Totals.Succeeded < 1 {
		t.Fatal("the in-flight item should have finished")
	}
	if snap.Totals.Skipped < 1 {
		t.Fatal("queued items should have been skipped")
	}
	sum := snap.Totals.Succeeded + snap.Totals.Failed + snap.Totals.Skipped
	if sum != 4 || snap.Totals.Pending != 0 {
		t.Fatalf("totals do not balance: %+v", snap.Totals)
	}
}

func TestControllerRejectsConcurrentStart(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(1))
	dir := t.TempDir()
	testsupport.WriteImages(t, dir, "a.png", "b.png")

	started := make(chan struct{}, 1)
	proceed := make(chan struct{})
	inv := &fakeInvoker{fn: func(context.Context, engine.Request) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-proceed
		return nil
	}}
	ctrl := NewController(cfg, inv, &nopSink{}, nil, logging.NewNop())

	rc := RunConfig{
		InputDirs: []string{dir},
		OutputDir: cfg.Paths.OutputDir,
		Scale:     4,
		Format:    engine.FormatPNG,
		Model:     "remacri-4x",
	}
	if _, err := ctrl.Start(context.Background(), rc); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-started

	if _, err := ctrl.Start(context.Background(), rc); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error on second start, got %v", err)
	}
	close(proceed)
	if err := ctrl.Wait(waitCtx(t)); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got := ctrl.State(); got != StateCompleted {
		t.Fatalf("state = %s, want completed", got)
	}
}

func TestControllerStopIsNoOpWhenIdle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctrl := NewController(cfg, &fakeInvoker{}, &nopSink{}, nil, logging.NewNop())
	ctrl.Stop()
	if got := ctrl.State(); got != StateIdle {
		t.Fatalf("state = %s, want idle", got)
	}
}

func TestControllerWithStubEngineWritesOutputs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedEngine())
	base := t.TempDir()
	first := filepath.Join(base, "left", "pages")
	second := filepath.Join(base, "right", "pages")
	testsupport.WriteImages(t, first, "a.png", "b.png")
	testsupport.WriteImages(t, second, "a.png")

	ctrl := NewController(cfg, engine.NewInvoker(cfg, logging.NewNop()), &nopSink{}, nil, logging.NewNop())
	_, err := ctrl.Start(context.Background(), RunConfig{
		InputDirs: []string{first, second},
		OutputDir: cfg.Paths.OutputDir,
		Scale:     4,
		Format:    engine.FormatPNG,
		Model:     "remacri-4x",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ctrl.Wait(waitCtx(t)); err != nil {
		t.Fatalf("wait: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.State != StateCompleted || snap.Totals.Succeeded != 3 {
		t.Fatalf("unexpected final snapshot: state=%s totals=%+v", snap.State, snap.Totals)
	}
	for _, want := range []string{
		filepath.Join(cfg.Paths.OutputDir, "pages", "a.png"),
		filepath.Join(cfg.Paths.OutputDir, "pages", "b.png"),
		filepath.Join(cfg.Paths.OutputDir, "pages_2", "a.png"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Fatalf("expected output %s: %v", want, err)
		}
	}
}
