package main

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a system diagnostic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}
			client := newClient(cfg)
			ctx := cmd.Context()

			fmt.Println(styleTitle.Render("  System Check"))
			fmt.Println()

			ok := true
			row := func(label string, good bool, okMsg, fixMsg string) {
				sym := styleOK.Render("✓")
				msg := styleDim.Render(okMsg)
				if !good {
					sym = styleFail.Render("✗")
					msg = styleFail.Render(fixMsg)
					ok = false
				}
				fmt.Printf("  %s  %-22s %s\n", sym, label, msg)
			}

			binPath, lookErr := exec.LookPath("ollama")
			row("ollama binary", lookErr == nil, binPath, "install: https://ollama.com/download")

			running := client.Ping(ctx)
			row("ollama server", running, "OK at "+client.BaseURL(), "run: ollama serve")

			var models []string
			if running {
				models, _ = client.Models(ctx)
			}
			row("installed models", len(models) > 0, fmt.Sprintf("%d model(s)", len(models)), "run: ollama pull llama3")
			for _, m := range models {
				fmt.Printf("       %s\n", styleDim.Render("• "+m))
			}

			if ci := strings.TrimSpace(cfg.CustomInstructions); ci != "" {
				fmt.Printf("  %s  %-22s %s\n", styleOK.Render("✓"), "custom instructions",
					styleDim.Render(fmt.Sprintf("set (%d chars)", len(ci))))
			} else {
				fmt.Printf("  %s  %-22s %s\n", styleDim.Render("ℹ"), "custom instructions",
					styleDim.Render("none (ollaterm instructions edit)"))
			}
			fmt.Printf("  %s  %-22s %s\n", styleDim.Render("ℹ"), "config file", styleDim.Render(path))

			fmt.Println()
			if ok {
				fmt.Println(styleOK.Render("  All checks passed."))
			} else {
				fmt.Println(styleWarn.Render("  Some issues found, see above."))
			}
			return nil
		},
	}
}
