package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"magnify/internal/batch"
)

type failurePayload struct {
	InputPath string `json:"input_path"`
	Reason    string `json:"reason"`
	Message   string `json:"message,omitempty"`
}

type directoryPayload struct {
	SourceDir  string           `json:"source_dir"`
	Group      string           `json:"group"`
	Unreadable bool             `json:"unreadable,omitempty"`
	Total      int              `json:"total"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	Skipped    int              `json:"skipped"`
	Failures   []failurePayload `json:"failures,omitempty"`
	PDFOutcome string           `json:"pdf_outcome,omitempty"`
	PDFPath    string           `json:"pdf_path,omitempty"`
	PDFPages   int              `json:"pdf_pages,omitempty"`
	PDFMessage string           `json:"pdf_message,omitempty"`
}

type runPayload struct {
	RunID       string             `json:"run_id"`
	State       string             `json:"state"`
	StartedAt   time.Time          `json:"started_at"`
	ElapsedMS   int64              `json:"elapsed_ms"`
	Total       int                `json:"total"`
	Succeeded   int                `json:"succeeded"`
	Failed      int                `json:"failed"`
	Skipped     int                `json:"skipped"`
	Directories []directoryPayload `json:"directories"`
}

func summaryPayload(snap batch.Snapshot) runPayload {
	payload := runPayload{
		RunID:     snap.RunID,
		State:     string(snap.State),
		StartedAt: snap.StartedAt,
		ElapsedMS: snap.Elapsed.Milliseconds(),
		Total:     snap.Totals.Total,
		Succeeded: snap.Totals.Succeeded,
		Failed:    snap.Totals.Failed,
		Skipped:   snap.Totals.Skipped,
	}
	for _, dir := range snap.Directories {
		var failures []failurePayload
		for _, f := range dir.Failures {
			failures = append(failures, failurePayload{
				InputPath: f.InputPath,
				Reason:    string(f.Reason),
				Message:   f.Message,
			})
		}
		payload.Directories = append(payload.Directories, directoryPayload{
			SourceDir:  dir.SourceDir,
			Group:      dir.Group,
			Unreadable: dir.Unreadable,
			Total:      dir.Counts.Total,
			Succeeded:  dir.Counts.Succeeded,
			Failed:     dir.Counts.Failed,
			Skipped:    dir.Counts.Skipped,
			Failures:   failures,
			PDFOutcome: string(dir.PDF),
			PDFPath:    dir.PDFPath,
			PDFPages:   dir.PDFPages,
			PDFMessage: dir.PDFMessage,
		})
	}
	return payload
}

func printJSON(w io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
