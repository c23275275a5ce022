package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"magnify/internal/engine"
)

// CheckEngineBinary verifies the upscaling binary can be resolved, either on
// PATH or as an explicit executable path.
func CheckEngineBinary(binary string) Result {
	const name = "Engine binary"

	cmd := strings.TrimSpace(binary)
	if cmd == "" {
		return Result{Name: name, Detail: "engine binary not configured"}
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", cmd)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckDirectoryAccess verifies the directory exists (creating it if
// necessary) and is writable.
func CheckDirectoryAccess(name, dir string) Result {
	if strings.TrimSpace(dir) == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cannot create: %v", err)}
	}
	probe, err := os.CreateTemp(dir, ".preflight-*")
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("not writable: %v", err)}
	}
	probePath := probe.Name()
	_ = probe.Close()
	_ = os.Remove(probePath)
	return Result{Name: name, Passed: true, Detail: dir}
}

// CheckModelsDir verifies the models directory holds at least one complete
// model (a .param/.bin pair).
func CheckModelsDir(dir string) Result {
	const name = "Models directory"

	info, err := os.Stat(dir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cannot read %s: %v", dir, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", dir)}
	}
	models, err := engine.ListModels(dir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cannot list models: %v", err)}
	}
	if len(models) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("no .param/.bin pairs in %s", dir)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d models in %s", len(models), filepath.Clean(dir))}
}
