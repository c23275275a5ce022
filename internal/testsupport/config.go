package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"magnify/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Engine.ItemTimeout = 30
	cfgVal.Workflow.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithWorkers overrides the worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.Workers = n
	}
}

// WithItemTimeout overrides the engine timeout (seconds) on the test config.
func WithItemTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.ItemTimeout = seconds
	}
}

// WithModelsDir points the config at a models directory populated with the
// given model names (as .param/.bin pairs).
func WithModelsDir(models ...string) ConfigOption {
	return func(b *configBuilder) {
		dir := filepath.Join(b.baseDir, "models")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.t.Fatalf("mkdir models dir: %v", err)
		}
		for _, name := range models {
			for _, ext := range []string{".param", ".bin"} {
				if err := os.WriteFile(filepath.Join(dir, name+ext), []byte("stub"), 0o644); err != nil {
					b.t.Fatalf("write model stub: %v", err)
				}
			}
		}
		b.cfg.Paths.ModelsDir = dir
	}
}

// WithStubbedEngine writes a stub engine executable that copies its -i
// argument to its -o argument and exits 0, then points engine.binary at it.
func WithStubbedEngine() ConfigOption {
	return WithEngineScript(`#!/bin/sh
in=""
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -i) in="$2"; shift 2 ;;
    -o) out="$2"; shift 2 ;;
    *) shift ;;
  esac
done
cp "$in" "$out"
`)
}

// WithEngineScript installs the given shell script as the engine binary.
func WithEngineScript(script string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "upscayl-stub")
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write engine stub: %v", err)
		}
		b.cfg.Engine.Binary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
