package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/metalagman/ollaterm/internal/logging"
)

var (
	cfgFile   string
	debug     bool
	modelFlag string
	webFlag   bool

	rootCmd = &cobra.Command{
		Use:          "ollaterm [task]",
		Short:        "ollaterm is an autonomous shell agent driven by a local Ollama server",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runMenu(cmd.Context())
			}
			return runTask(cmd.Context(), args[0], modelFlag)
		},
	}
)

// Execute runs the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default ~/.ollaterm/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "model to use (default: auto-select)")
	rootCmd.Flags().BoolVar(&webFlag, "web", false, "enable the web search/fetch gateway")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Init(debug)
	}
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(pullCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(instructionsCmd())
	rootCmd.AddCommand(runsCmd())
	return rootCmd.Execute()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ollaterm", "config.json"), nil
}
