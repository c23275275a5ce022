package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"magnify/internal/batch"
	"magnify/internal/services"
)

// ErrRunNotFound indicates no run with the requested id exists. It carries
// the shared not-found marker so callers can classify it generically.
var ErrRunNotFound = fmt.Errorf("%w: run not found", services.ErrNotFound)

// RunRecord is a persisted run summary.
type RunRecord struct {
	ID          string
	State       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Elapsed     time.Duration
	Model       string
	Scale       int
	Format      string
	GeneratePDF bool
	OutputDir   string
	InputDirs   []string
	Total       int
	Succeeded   int
	Failed      int
	Skipped     int
}

// DirectoryRecord is one persisted per-directory row of a run.
type DirectoryRecord struct {
	SourceDir  string
	Group      string
	Unreadable bool
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
	Failures   []batch.ItemFailure
	PDFOutcome string
	PDFPath    string
	PDFPages   int
	PDFMessage string
}

// RecordRun persists a finished run and its per-directory breakdown in one
// transaction. It implements batch.Recorder.
func (s *Store) RecordRun(ctx context.Context, snap batch.Snapshot, rc batch.RunConfig) error {
	inputDirs, err := json.Marshal(rc.InputDirs)
	if err != nil {
		return fmt.Errorf("encode input dirs: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, state, started_at, finished_at, elapsed_ms,
            model, scale, format, generate_pdf, output_dir, input_dirs,
            total, succeeded, failed, skipped
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.RunID,
		string(snap.State),
		snap.StartedAt.UTC().Format(time.RFC3339Nano),
		snap.FinishedAt.UTC().Format(time.RFC3339Nano),
		snap.Elapsed.Milliseconds(),
		rc.Model,
		rc.Scale,
		string(rc.Format),
		boolToInt(rc.GeneratePDF),
		rc.OutputDir,
		string(inputDirs),
		snap.Totals.Total,
		snap.Totals.Succeeded,
		snap.Totals.Failed,
		snap.Totals.Skipped,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, dir := range snap.Directories {
		failures, err := json.Marshal(dir.Failures)
		if err != nil {
			return fmt.Errorf("encode failures for %s: %w", dir.Group, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_directories (
                run_id, position, source_dir, group_name, unreadable,
                total, succeeded, failed, skipped, failures,
                pdf_outcome, pdf_path, pdf_pages, pdf_message
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.RunID,
			i,
			dir.SourceDir,
			dir.Group,
			boolToInt(dir.Unreadable),
			dir.Counts.Total,
			dir.Counts.Succeeded,
			dir.Counts.Failed,
			dir.Counts.Skipped,
			string(failures),
			string(dir.PDF),
			dir.PDFPath,
			dir.PDFPages,
			dir.PDFMessage,
		)
		if err != nil {
			return fmt.Errorf("insert run directory %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run tx: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means no
// limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT id, state, started_at, finished_at, elapsed_ms,
        model, scale, format, generate_pdf, output_dir, input_dirs,
        total, succeeded, failed, skipped
        FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}

// GetRun returns one run and its per-directory breakdown.
func (s *Store) GetRun(ctx context.Context, id string) (RunRecord, []DirectoryRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, state, started_at, finished_at, elapsed_ms,
        model, scale, format, generate_pdf, output_dir, input_dirs,
        total, succeeded, failed, skipped
        FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return RunRecord{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_dir, group_name, unreadable,
        total, succeeded, failed, skipped, failures,
        pdf_outcome, pdf_path, pdf_pages, pdf_message
        FROM run_directories WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("query run directories: %w", err)
	}
	defer rows.Close()

	var dirs []DirectoryRecord
	for rows.Next() {
		var d DirectoryRecord
		var unreadable int
		var failures string
		if err := rows.Scan(&d.SourceDir, &d.Group, &unreadable,
			&d.Total, &d.Succeeded, &d.Failed, &d.Skipped, &failures,
			&d.PDFOutcome, &d.PDFPath, &d.PDFPages, &d.PDFMessage); err != nil {
			return RunRecord{}, nil, fmt.Errorf("scan run directory: %w", err)
		}
		d.Unreadable = unreadable != 0
		if err := json.Unmarshal([]byte(failures), &d.Failures); err != nil {
			return RunRecord{}, nil, fmt.Errorf("decode failures: %w", err)
		}
		dirs = append(dirs, d)
	}
	if err := rows.Err(); err != nil {
		return RunRecord{}, nil, fmt.Errorf("iterate run directories: %w", err)
	}
	return rec, dirs, nil
}

// Clear deletes all persisted runs.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM runs"); err != nil {
		return fmt.Errorf("clear runs: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var rec RunRecord
	var started, finished, inputDirs string
	var elapsedMS int64
	var generatePDF int
	err := row.Scan(&rec.ID, &rec.State, &started, &finished, &elapsedMS,
		&rec.Model, &rec.Scale, &rec.Format, &generatePDF, &rec.OutputDir,
		&inputDirs, &rec.Total, &rec.Succeeded, &rec.Failed, &rec.Skipped)
	if err != nil {
		return RunRecord{}, err
	}
	rec.GeneratePDF = generatePDF != 0
	if err := json.Unmarshal([]byte(inputDirs), &rec.InputDirs); err != nil {
		return RunRecord{}, fmt.Errorf("decode input dirs: %w", err)
	}
	rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return RunRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return RunRecord{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
