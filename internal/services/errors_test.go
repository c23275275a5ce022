package services_test

import (
	"errors"
	"strings"
	"testing"

	"magnify/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("exit status 2")
	err := services.Wrap(services.ErrExternalTool, "engine", "invoke", "upscayl-bin failed", cause)

	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("expected marker to survive wrapping")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to survive wrapping")
	}
	if !strings.Contains(err.Error(), "engine: invoke: upscayl-bin failed") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("expected transient default marker")
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message: %v", err)
	}
}
