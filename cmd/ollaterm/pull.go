package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <model>",
		Short: "Download a model through the Ollama server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			client := newClient(cfg)
			ctx := cmd.Context()

			if !client.EnsureRunning(ctx) {
				return fmt.Errorf("ollama server is not reachable at %s (run: ollama serve)", client.BaseURL())
			}

			model := args[0]
			fmt.Printf("  Pulling %s…\n", styleTitle.Render(model))
			if err := client.Pull(ctx, model, func(status string) {
				fmt.Printf("  %s\n", styleDim.Render(status))
			}); err != nil {
				return err
			}
			fmt.Println(styleOK.Render("  Done."))
			return nil
		},
	}
}
