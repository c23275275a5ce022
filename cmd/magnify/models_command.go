package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"magnify/internal/engine"
)

func newModelsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the upscaling models available to the engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.Paths.ModelsDir == "" {
				fmt.Fprintln(out, "no models directory configured; known engine models:")
				for _, name := range engine.KnownModels() {
					fmt.Fprintf(out, "  %s\n", name)
				}
				return nil
			}

			models, err := engine.ListModels(cfg.Paths.ModelsDir)
			if err != nil {
				return fmt.Errorf("list models in %s: %w", cfg.Paths.ModelsDir, err)
			}
			if len(models) == 0 {
				fmt.Fprintf(out, "no models found in %s\n", cfg.Paths.ModelsDir)
				return nil
			}
			for _, name := range models {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
