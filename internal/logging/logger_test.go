package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"magnify/internal/services"
)

func TestConsoleHandlerPrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("item resolved",
		String(FieldComponent, "scheduler"),
		String(FieldOutcome, "succeeded"),
		Int("index", 3),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO scheduler: item resolved") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "outcome=succeeded") || !strings.Contains(line, "index=3") {
		t.Fatalf("missing attrs: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not appear as attr: %q", line)
	}
}

func TestConsoleHandlerQuotesAwkwardValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Warn("scan failed", String("path", "/tmp/my dir"))

	if !strings.Contains(buf.String(), `path="/tmp/my dir"`) {
		t.Fatalf("expected quoted value: %q", buf.String())
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected info suppressed at warn level, got %q", buf.String())
	}
	logger.Error("kept")
	if !strings.Contains(buf.String(), "ERROR") {
		t.Fatalf("expected error output, got %q", buf.String())
	}
}

func TestWithContextAttachesRunFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	base := slog.New(newConsoleHandler(&buf, lvl))

	ctx := services.WithRunID(context.Background(), "run-42")
	ctx = services.WithDirectory(ctx, "/data/chapter01")

	WithContext(ctx, base).Info("hello")

	line := buf.String()
	if !strings.Contains(line, "run_id=run-42") {
		t.Fatalf("missing run id: %q", line)
	}
	if !strings.Contains(line, "directory=/data/chapter01") {
		t.Fatalf("missing directory: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
