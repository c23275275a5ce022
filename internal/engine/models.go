package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// knownModels is the engine's bundled model set, used for validation when no
// models directory is configured.
var knownModels = []string{
	"digital-art-4x",
	"high-fidelity-4x",
	"remacri-4x",
	"ultramix-balanced-4x",
	"ultrasharp-4x",
	"upscayl-lite-4x",
	"upscayl-standard-4x",
}

// KnownModels returns the bundled model names.
func KnownModels() []string {
	cp := make([]string, len(knownModels))
	copy(cp, knownModels)
	return cp
}

// ListModels discovers models in dir: every <name>.param with a matching
// <name>.bin counts as one model. Results are sorted.
func ListModels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list models directory %s: %w", dir, err)
	}

	params := map[string]bool{}
	bins := map[string]bool{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".param":
			params[strings.TrimSuffix(name, filepath.Ext(name))] = true
		case ".bin":
			bins[strings.TrimSuffix(name, filepath.Ext(name))] = true
		}
	}

	var models []string
	for name := range params {
		if bins[name] {
			models = append(models, name)
		}
	}
	sort.Strings(models)
	return models, nil
}

// AvailableModels returns the model names valid for a run: the discovered set
// when a models directory is configured, the bundled set otherwise.
func AvailableModels(modelsDir string) ([]string, error) {
	if strings.TrimSpace(modelsDir) == "" {
		return KnownModels(), nil
	}
	return ListModels(modelsDir)
}
