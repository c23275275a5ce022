package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"magnify/internal/config"
)

func TestLoadDefaultsExpandPathsAndHonorEnvEngine(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MAGNIFY_ENGINE", "/opt/upscayl/upscayl-bin")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.OutputDir != filepath.Join(tempHome, "magnify", "output") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "magnify", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Engine.Binary != "/opt/upscayl/upscayl-bin" {
		t.Fatalf("expected engine binary from env, got %q", cfg.Engine.Binary)
	}
	if cfg.Engine.ItemTimeout != 600 {
		t.Fatalf("unexpected item timeout: %d", cfg.Engine.ItemTimeout)
	}
	if cfg.Workflow.Workers <= 0 {
		t.Fatalf("expected positive default workers, got %d", cfg.Workflow.Workers)
	}
	if cfg.Scan.Order != config.OrderLexicographic {
		t.Fatalf("unexpected scan order: %q", cfg.Scan.Order)
	}
	if !cfg.PDF.Enabled {
		t.Fatal("expected PDF assembly enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q %q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
output_dir = "` + dir + `/out"
log_dir = "` + dir + `/logs"

[engine]
binary = "  fake-engine  "
item_timeout = 30

[scan]
order = "Natural"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q %v", resolved, exists)
	}
	if cfg.Engine.Binary != "fake-engine" {
		t.Fatalf("expected trimmed binary, got %q", cfg.Engine.Binary)
	}
	if cfg.Scan.Order != config.OrderNatural {
		t.Fatalf("expected normalized scan order, got %q", cfg.Scan.Order)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero timeout", func(c *config.Config) { c.Engine.ItemTimeout = 0 }, "item_timeout"},
		{"zero workers", func(c *config.Config) { c.Workflow.Workers = 0 }, "workers"},
		{"bad order", func(c *config.Config) { c.Scan.Order = "random" }, "scan.order"},
		{"bad compression", func(c *config.Config) { c.Engine.CompressionLevel = 101 }, "compression_level"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when overwriting existing config")
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Engine.Binary == "" {
		t.Fatal("sample config produced empty engine binary")
	}
}
