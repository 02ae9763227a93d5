package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metalagman/ollaterm/internal/config"
)

func instructionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instructions",
		Short: "Manage custom instructions added to the agent's system prompt",
	}
	cmd.AddCommand(instructionsShowCmd(), instructionsSetCmd(), instructionsClearCmd())
	return cmd
}

func instructionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current custom instructions",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			ci := strings.TrimSpace(cfg.CustomInstructions)
			if ci == "" {
				fmt.Println(styleDim.Render("  No custom instructions set."))
				return nil
			}
			for _, line := range strings.Split(ci, "\n") {
				fmt.Printf("  %s\n", line)
			}
			return nil
		},
	}
}

func instructionsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <text>",
		Short: "Replace custom instructions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return updateInstructions(strings.Join(args, " "))
		},
	}
}

func instructionsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear custom instructions",
		RunE: func(_ *cobra.Command, _ []string) error {
			return updateInstructions("")
		},
	}
}

func updateInstructions(text string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.CustomInstructions = strings.TrimSpace(text)
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	if cfg.CustomInstructions == "" {
		fmt.Println(styleWarn.Render("  Cleared."))
	} else {
		fmt.Println(styleOK.Render("  Saved."))
	}
	return nil
}
