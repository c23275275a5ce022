package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"magnify/internal/scan"
)

func newScanCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan DIR [DIR...]",
		Short: "List the images a run would process, in processing order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(args))
			for _, dir := range args {
				names, err := scan.List(dir, scan.Options{Order: cfg.Scan.Order, Recursive: cfg.Scan.Recursive})
				if err != nil {
					rows = append(rows, []string{dir, "-", "unreadable: " + err.Error()})
					continue
				}
				rows = append(rows, []string{dir, strconv.Itoa(len(names)), ""})
				if verbose, _ := cmd.Flags().GetBool("files"); verbose {
					for i, path := range names {
						fmt.Fprintf(out, "  [%d] %s\n", i, path)
					}
				}
			}
			fmt.Fprintln(out, renderTable([]string{"Directory", "Images", "Notes"}, rows, 2))
			return nil
		},
	}
	cmd.Flags().Bool("files", false, "Also list every discovered file")
	return cmd
}
