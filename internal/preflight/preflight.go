package preflight

import (
	"magnify/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for the given config. Checks that
// depend on optional configuration run only when that configuration is set.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckEngineBinary(cfg.Engine.Binary),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	if cfg.Paths.ModelsDir != "" {
		results = append(results, CheckModelsDir(cfg.Paths.ModelsDir))
	}
	return results
}
