package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"magnify/internal/history"
)

func newHistoryCommand(cmdCtx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(cmdCtx))
	historyCmd.AddCommand(newHistoryShowCommand(cmdCtx))
	historyCmd.AddCommand(newHistoryClearCommand(cmdCtx))
	return historyCmd
}

func withStore(cmdCtx *commandContext, fn func(*history.Store) error) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmdCtx, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ID,
						run.State,
						run.StartedAt.Local().Format(time.DateTime),
						run.Elapsed.Round(time.Second).String(),
						run.Model,
						strconv.Itoa(run.Succeeded),
						strconv.Itoa(run.Failed),
						strconv.Itoa(run.Skipped),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Run", "State", "Started", "Elapsed", "Model", "OK", "Failed", "Skipped"},
					rows, 6, 7, 8))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func newHistoryShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show one run's per-directory breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmdCtx, func(store *history.Store) error {
				run, dirs, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "run %s  state=%s  model=%s  scale=%d  format=%s  elapsed=%s\n",
					run.ID, run.State, run.Model, run.Scale, run.Format,
					run.Elapsed.Round(time.Second))
				fmt.Fprintf(out, "inputs: %s\n", strings.Join(run.InputDirs, ", "))
				rows := make([][]string, 0, len(dirs))
				for _, dir := range dirs {
					pdfCell := dir.PDFOutcome
					if dir.PDFPages > 0 {
						pdfCell = fmt.Sprintf("%s (%d pages)", dir.PDFPath, dir.PDFPages)
					}
					rows = append(rows, []string{
						dir.SourceDir,
						dir.Group,
						strconv.Itoa(dir.Succeeded),
						strconv.Itoa(dir.Failed),
						strconv.Itoa(dir.Skipped),
						pdfCell,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Directory", "Group", "OK", "Failed", "Skipped", "PDF"},
					rows, 3, 4, 5))
				for _, dir := range dirs {
					for _, f := range dir.Failures {
						fmt.Fprintf(out, "failed: %s (%s)\n", f.InputPath, f.Reason)
					}
				}
				return nil
			})
		},
	}
}

func newHistoryClearCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmdCtx, func(store *history.Store) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
				return nil
			})
		},
	}
}
