package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"magnify/internal/config"
	"magnify/internal/engine"
	"magnify/internal/logging"
	"magnify/internal/naming"
	"magnify/internal/scan"
	"magnify/internal/services"
)

// DirectoryPlan is the scanned work for one input directory. An unreadable
// directory keeps its slot in the plan with ScanErr set so the run can
// report it without aborting the other directories.
type DirectoryPlan struct {
	SourceDir string
	GroupName string
	Items     []WorkItem
	ScanErr   error
}

// Plan is the full item inventory of a run, fixed at start. Directories
// appear in the caller's order after first-wins deduplication.
type Plan struct {
	Dirs       []DirectoryPlan
	TotalItems int
}

// ValidateRunConfig checks the parts of a RunConfig that must hold before a
// run may start. Directory readability is deliberately not checked here;
// scan failures degrade to per-directory errors inside BuildPlan.
func ValidateRunConfig(cfg *config.Config, rc RunConfig) error {
	if len(rc.InputDirs) == 0 {
		return services.Wrap(services.ErrValidation, "batch", "validate", "at least one input directory is required", nil)
	}
	for _, dir := range rc.InputDirs {
		info, err := os.Stat(dir)
		if err != nil {
			return services.Wrap(services.ErrValidation, "batch", "validate", fmt.Sprintf("input directory %s does not exist", dir), err)
		}
		if !info.IsDir() {
			return services.Wrap(services.ErrValidation, "batch", "validate", fmt.Sprintf("input path %s is not a directory", dir), nil)
		}
	}
	if rc.OutputDir == "" {
		return services.Wrap(services.ErrValidation, "batch", "validate", "output directory is required", nil)
	}
	if !engine.ValidScale(rc.Scale) {
		return services.Wrap(services.ErrValidation, "batch", "validate", fmt.Sprintf("unsupported scale %d (want 2, 3 or 4)", rc.Scale), nil)
	}
	if _, err := engine.ParseFormat(string(rc.Format)); err != nil {
		return services.Wrap(services.ErrValidation, "batch", "validate", fmt.Sprintf("unsupported output format %q", rc.Format), err)
	}
	if rc.Model == "" {
		return services.Wrap(services.ErrValidation, "batch", "validate", "model name is required", nil)
	}
	available, err := engine.AvailableModels(cfg.Paths.ModelsDir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "batch", "validate", fmt.Sprintf("cannot read models directory %s", cfg.Paths.ModelsDir), err)
	}
	if len(available) == 0 {
		return services.Wrap(services.ErrConfiguration, "batch", "validate", fmt.Sprintf("models directory %s contains no models", cfg.Paths.ModelsDir), nil)
	}
	found := false
	for _, m := range available {
		if m == rc.Model {
			found = true
			break
		}
	}
	if !found {
		return services.Wrap(services.ErrValidation, "batch", "validate", fmt.Sprintf("model %q is not available", rc.Model), nil)
	}
	return nil
}

// dedupeDirs drops repeated input directories, keeping the first occurrence.
// Paths are compared after cleaning; symlink aliases are not chased.
func dedupeDirs(dirs []string, logger *slog.Logger) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		key := filepath.Clean(dir)
		if _, dup := seen[key]; dup {
			logger.Warn("duplicate input directory ignored", logging.FieldDirectory, dir)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// BuildPlan enumerates every input directory and fixes the item inventory
// for the run. Group names and output file names are claimed through a
// single resolver so concurrent completions cannot collide on disk.
func BuildPlan(cfg *config.Config, rc RunConfig, logger *slog.Logger) *Plan {
	dirs := dedupeDirs(rc.InputDirs, logger)
	resolver := naming.NewResolver()
	ext := rc.Format.Ext()

	plan := &Plan{Dirs: make([]DirectoryPlan, 0, len(dirs))}
	for _, dir := range dirs {
		group := resolver.Claim(dir, filepath.Base(dir))
		dp := DirectoryPlan{SourceDir: dir, GroupName: group}

		paths, err := scan.List(dir, scan.Options{Order: cfg.Scan.Order, Recursive: cfg.Scan.Recursive})
		if err != nil {
			dp.ScanErr = services.Wrap(services.ErrTransient, "batch", "scan", fmt.Sprintf("cannot read directory %s", dir), err)
			logger.Warn("directory unreadable, skipping", logging.FieldDirectory, dir, "error", err)
			plan.Dirs = append(plan.Dirs, dp)
			continue
		}

		dp.Items = make([]WorkItem, 0, len(paths))
		for i, inputPath := range paths {
			requested := naming.OutputPath(rc.OutputDir, group, filepath.Base(inputPath), ext)
			dp.Items = append(dp.Items, WorkItem{
				Group:      group,
				SourceDir:  dir,
				InputPath:  inputPath,
				OutputPath: resolver.Claim(inputPath, requested),
				Index:      i,
			})
		}
		plan.TotalItems += len(dp.Items)
		plan.Dirs = append(plan.Dirs, dp)
	}
	return plan
}
