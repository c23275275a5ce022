package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"magnify/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_CreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass after create, got: %s", result.Detail)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestCheckDirectoryAccess_NotConfigured(t *testing.T) {
	result := CheckDirectoryAccess("test", "  ")
	if result.Passed {
		t.Fatal("expected failure for blank path")
	}
}

func TestCheckEngineBinary_Missing(t *testing.T) {
	result := CheckEngineBinary("definitely-not-a-real-binary-4x")
	if result.Passed {
		t.Fatal("expected failure for unknown binary")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckEngineBinary_Resolves(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedEngine())
	result := CheckEngineBinary(cfg.Engine.Binary)
	if !result.Passed {
		t.Fatalf("expected pass for stub engine, got: %s", result.Detail)
	}
}

func TestCheckModelsDir(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithModelsDir("remacri-4x"))
	result := CheckModelsDir(cfg.Paths.ModelsDir)
	if !result.Passed {
		t.Fatalf("expected pass for populated models dir, got: %s", result.Detail)
	}

	empty := t.TempDir()
	if result := CheckModelsDir(empty); result.Passed {
		t.Fatal("expected failure for empty models dir")
	}
}

func TestRunAllCoversConfiguredChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedEngine(), testsupport.WithModelsDir("remacri-4x"))
	results := RunAll(cfg)
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for _, res := range results {
		if !res.Passed {
			t.Fatalf("check %s failed: %s", res.Name, res.Detail)
		}
	}
}
