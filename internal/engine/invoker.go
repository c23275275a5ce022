package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"magnify/internal/config"
	"magnify/internal/logging"
	"magnify/internal/services"
)

// Sentinel errors for invocation outcomes. NonZeroExitError carries the
// code. The timeout sentinel carries the shared timeout marker so callers
// outside the batch layer can classify it generically.
var (
	ErrEngineNotFound = errors.New("engine binary not found")
	ErrEngineTimeout  = fmt.Errorf("%w: engine invocation timed out", services.ErrTimeout)
	ErrOutputMissing  = errors.New("engine produced no output file")
)

// NonZeroExitError reports an engine process that ran but failed.
type NonZeroExitError struct {
	Code   int
	Stderr string
}

func (e *NonZeroExitError) Error() string {
	msg := fmt.Sprintf("engine exited with status %d", e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLine(s)
	}
	return msg
}

// Invoker runs the external upscaling engine, one synchronous invocation per
// image. It never retries and holds no mutable state; its only side effects
// are the spawned process and the output file that process writes.
type Invoker struct {
	engine    config.Engine
	modelsDir string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewInvoker constructs an Invoker from application configuration.
func NewInvoker(cfg *config.Config, logger *slog.Logger) *Invoker {
	return &Invoker{
		engine:    cfg.Engine,
		modelsDir: cfg.Paths.ModelsDir,
		timeout:   time.Duration(cfg.Engine.ItemTimeout) * time.Second,
		logger:    logging.NewComponentLogger(logger, "engine"),
	}
}

// Upscale invokes the engine for one image and verifies the output file
// exists and is non-empty. The context governs cancellation before launch
// only; once started, the process runs to completion under the configured
// hard timeout so partial output files are never left behind by a kill
// mid-write, except on timeout where a hung process must be reaped.
func (inv *Invoker) Upscale(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := exec.LookPath(inv.engine.Binary); err != nil {
		return fmt.Errorf("%w: %s", ErrEngineNotFound, inv.engine.Binary)
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Detached from the run context: a stop request lets in-flight work
	// finish. The hard timeout still bounds a hung engine.
	runCtx, cancel := context.WithTimeout(context.Background(), inv.timeout)
	defer cancel()

	args := buildArgs(inv.engine, inv.modelsDir, req)
	cmd := exec.CommandContext(runCtx, inv.engine.Binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	inv.logger.Debug("launching engine",
		logging.String(logging.FieldItem, req.InputPath),
		logging.String("command", inv.engine.Binary+" "+strings.Join(args, " ")),
	)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		return fmt.Errorf("%w after %s", ErrEngineTimeout, inv.timeout)
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &NonZeroExitError{Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrEngineNotFound, inv.engine.Binary)
		}
		return fmt.Errorf("run engine: %w", err)
	}

	info, statErr := os.Stat(req.OutputPath)
	if statErr != nil || info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrOutputMissing, req.OutputPath)
	}

	inv.logger.Debug("engine finished",
		logging.String(logging.FieldItem, req.InputPath),
		logging.Duration("elapsed", elapsed),
		logging.Int64("output_bytes", info.Size()),
	)
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
