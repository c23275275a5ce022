package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"magnify/internal/batch"
	"magnify/internal/engine"
	"magnify/internal/services"
	"magnify/internal/testsupport"
)

func sampleSnapshot(id string, started time.Time) batch.Snapshot {
	return batch.Snapshot{
		RunID:      id,
		State:      batch.StateCompleted,
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Elapsed:    90 * time.Second,
		Totals:     batch.Counts{Total: 3, Succeeded: 2, Failed: 1},
		Directories: []batch.DirectoryStatus{
			{
				SourceDir: "/in/pages",
				Group:     "pages",
				Counts:    batch.Counts{Total: 2, Succeeded: 2},
				PDF:       batch.PDFCreated,
				PDFPath:   "/out/pages.pdf",
				PDFPages:  2,
			},
			{
				SourceDir: "/in/scans",
				Group:     "scans",
				Counts:    batch.Counts{Total: 1, Failed: 1},
				Failures: []batch.ItemFailure{
					{InputPath: "/in/scans/p1.png", Reason: batch.ReasonEngineTimeout},
				},
				PDF: batch.PDFNoOutput,
			},
		},
	}
}

func sampleRunConfig() batch.RunConfig {
	return batch.RunConfig{
		InputDirs:   []string{"/in/pages", "/in/scans"},
		OutputDir:   "/out",
		Scale:       4,
		Format:      engine.FormatPNG,
		Model:       "remacri-4x",
		GeneratePDF: true,
	}
}

func TestRecordAndListRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	if err := store.RecordRun(ctx, sampleSnapshot("run-1", base), sampleRunConfig()); err != nil {
		t.Fatalf("record run-1: %v", err)
	}
	if err := store.RecordRun(ctx, sampleSnapshot("run-2", base.Add(time.Hour)), sampleRunConfig()); err != nil {
		t.Fatalf("record run-2: %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-2" {
		t.Fatalf("newest run first: got %s", runs[0].ID)
	}
	if runs[1].Succeeded != 2 || runs[1].Failed != 1 {
		t.Fatalf("unexpected counts: %+v", runs[1])
	}
	if !runs[1].StartedAt.Equal(base) {
		t.Fatalf("started_at round trip: got %v, want %v", runs[1].StartedAt, base)
	}

	limited, err := store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "run-2" {
		t.Fatalf("limit not applied: %+v", limited)
	}
}

func TestGetRunReturnsDirectoriesInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	if err := store.RecordRun(ctx, sampleSnapshot("run-1", started), sampleRunConfig()); err != nil {
		t.Fatalf("record run: %v", err)
	}

	rec, dirs, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if rec.Model != "remacri-4x" || rec.Scale != 4 || !rec.GeneratePDF {
		t.Fatalf("unexpected run record: %+v", rec)
	}
	if len(rec.InputDirs) != 2 || rec.InputDirs[0] != "/in/pages" {
		t.Fatalf("input dirs not round-tripped: %v", rec.InputDirs)
	}
	if len(dirs) != 2 {
		t.Fatalf("got %d directories, want 2", len(dirs))
	}
	if dirs[0].Group != "pages" || dirs[1].Group != "scans" {
		t.Fatalf("directory order not preserved: %+v", dirs)
	}
	if dirs[0].PDFOutcome != string(batch.PDFCreated) || dirs[0].PDFPages != 2 {
		t.Fatalf("pdf columns wrong: %+v", dirs[0])
	}
	if len(dirs[0].Failures) != 0 {
		t.Fatalf("unexpected failures on pages: %+v", dirs[0].Failures)
	}
	if len(dirs[1].Failures) != 1 ||
		dirs[1].Failures[0].Reason != batch.ReasonEngineTimeout ||
		dirs[1].Failures[0].InputPath != "/in/scans/p1.png" {
		t.Fatalf("failures not round-tripped: %+v", dirs[1].Failures)
	}
}

func TestGetRunNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	_, _, err = store.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("missing run should carry the not-found marker, got %v", err)
	}
}

func TestClearRemovesRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	if err := store.RecordRun(ctx, sampleSnapshot("run-1", started), sampleRunConfig()); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected empty history, got %d runs", len(runs))
	}
}
