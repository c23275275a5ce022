package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"magnify/internal/assemble"
	"magnify/internal/batch"
	"magnify/internal/engine"
	"magnify/internal/history"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		outputDir string
		scale     int
		format    string
		model     string
		pdf       bool
		workers   int
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "run DIR [DIR...]",
		Short: "Upscale every image in the given directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workflow.Workers = workers
			}
			if outputDir == "" {
				outputDir = cfg.Paths.OutputDir
			}
			if !cmd.Flags().Changed("pdf") {
				pdf = cfg.PDF.Enabled
			}
			parsedFormat, err := engine.ParseFormat(format)
			if err != nil {
				return err
			}

			var recorder batch.Recorder
			store, err := history.Open(cfg)
			if err != nil {
				logger.Warn("run history unavailable", "error", err.Error())
			} else {
				recorder = store
				defer store.Close()
			}

			invoker := engine.NewInvoker(cfg, logger)
			aggregator := assemble.NewAggregator(nil, cfg.PDF.AssemblyParallel, logger)
			ctrl := batch.NewController(cfg, invoker, aggregator, recorder, logger)

			runID, err := ctrl.Start(cmd.Context(), batch.RunConfig{
				InputDirs:   args,
				OutputDir:   outputDir,
				Scale:       scale,
				Format:      parsedFormat,
				Model:       model,
				GeneratePDF: pdf,
			})
			if err != nil {
				return err
			}
			if !jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "run %s started\n", runID)
			}

			sigCh := make(chan os.Signal, 2)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				<-sigCh
				fmt.Fprintln(cmd.ErrOrStderr(), "stop requested; letting in-flight items finish (interrupt again to abandon)")
				ctrl.Stop()
				<-sigCh
				os.Exit(130)
			}()

			if !jsonOut && isatty.IsTerminal(os.Stdout.Fd()) {
				stopProgress := startProgress(cmd, ctrl)
				defer stopProgress()
			}

			// The run must drain even if the command context is cancelled;
			// cancellation is routed through Stop above.
			if err := ctrl.Wait(context.Background()); err != nil {
				return err
			}

			snap := ctrl.Snapshot()
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), summaryPayload(snap))
			}
			printSummary(cmd, snap)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output base directory (defaults to the configured path)")
	cmd.Flags().IntVarP(&scale, "scale", "s", 4, "Upscale factor (2, 3 or 4)")
	cmd.Flags().StringVarP(&format, "format", "f", "png", "Output image format (png, jpg, webp)")
	cmd.Flags().StringVarP(&model, "model", "m", "upscayl-standard-4x", "Model name")
	cmd.Flags().BoolVar(&pdf, "pdf", true, "Assemble one PDF per directory")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker count override")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the run summary as JSON")

	return cmd
}

// startProgress prints a progress line every second until stopped.
func startProgress(cmd *cobra.Command, ctrl *batch.Controller) func() {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				fmt.Fprint(cmd.OutOrStdout(), "\r\033[K")
				return
			case <-ticker.C:
				snap := ctrl.Snapshot()
				resolved := snap.Totals.Total - snap.Totals.Pending
				fmt.Fprintf(cmd.OutOrStdout(), "\r\033[K%s  %d/%d  ok=%d failed=%d skipped=%d  %s",
					snap.State, resolved, snap.Totals.Total,
					snap.Totals.Succeeded, snap.Totals.Failed, snap.Totals.Skipped,
					snap.Elapsed.Round(time.Second))
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

func printSummary(cmd *cobra.Command, snap batch.Snapshot) {
	rows := make([][]string, 0, len(snap.Directories))
	for _, dir := range snap.Directories {
		pdfCell := string(dir.PDF)
		if dir.PDF == batch.PDFCreated {
			pdfCell = fmt.Sprintf("%s (%d pages)", dir.PDFPath, dir.PDFPages)
		}
		status := ""
		if dir.Unreadable {
			status = "unreadable"
		}
		rows = append(rows, []string{
			dir.SourceDir,
			dir.Group,
			strconv.Itoa(dir.Counts.Succeeded),
			strconv.Itoa(dir.Counts.Failed),
			strconv.Itoa(dir.Counts.Skipped),
			pdfCell,
			status,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Directory", "Group", "OK", "Failed", "Skipped", "PDF", "Notes"},
		rows, 3, 4, 5))
	printFailures(cmd, snap)
	fmt.Fprintf(out, "run %s %s in %s: %d succeeded, %d failed, %d skipped\n",
		snap.RunID, snap.State, snap.Elapsed.Round(time.Millisecond),
		snap.Totals.Succeeded, snap.Totals.Failed, snap.Totals.Skipped)
}

// printFailures lists every failed item with its reason so the summary
// names what went wrong, not just how often.
func printFailures(cmd *cobra.Command, snap batch.Snapshot) {
	out := cmd.OutOrStdout()
	for _, dir := range snap.Directories {
		for _, f := range dir.Failures {
			line := fmt.Sprintf("failed: %s (%s)", f.InputPath, f.Reason)
			if f.Message != "" {
				line += ": " + f.Message
			}
			fmt.Fprintln(out, line)
		}
	}
}
