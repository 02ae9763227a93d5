package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/metalagman/ollaterm/internal/agent"
	"github.com/metalagman/ollaterm/internal/config"
	"github.com/metalagman/ollaterm/internal/ollama"
	"github.com/metalagman/ollaterm/internal/web"
)

// runTask drives one agent run end to end: server up, model chosen,
// gateway negotiated, loop executed, outcome reported and recorded.
func runTask(ctx context.Context, task, model string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	if !client.EnsureRunning(ctx) {
		return fmt.Errorf("ollama server is not reachable at %s (run: ollama serve)", client.BaseURL())
	}

	if model == "" {
		model = cfg.Ollama.Model
	}
	if model == "" {
		model, err = client.AutoModel(ctx)
		if err != nil {
			return err
		}
		if model == "" {
			return fmt.Errorf("no models installed (run: ollama pull llama3)")
		}
		fmt.Printf("  %s %s\n", styleDim.Render("Auto-selected:"), styleTitle.Render(model))
	}

	gateway := web.New(ctx, web.Config{
		Enabled:      webFlag || cfg.Web.Enabled,
		SearchURL:    cfg.Web.SearchURL,
		FetchTimeout: cfg.Web.FetchTimeoutDuration(),
	}, nil)

	prompter := newStdinPrompter()
	outcome, err := executeLoop(ctx, cfg, client, gateway, prompter, task, model)
	if err != nil {
		return err
	}

	reportOutcome(outcome)
	recordRun(ctx, task, model, outcome)

	if outcome.Kind == agent.OutcomeDone && prompter.confirm(styleDim.Render("  Save as a saved task? [y/N]: ")) {
		if err := saveTask(ctx, task); err != nil {
			fatal(err)
		} else {
			fmt.Println(styleOK.Render("  Saved."))
		}
	}
	return nil
}

func executeLoop(ctx context.Context, cfg config.Config, client *ollama.Client, gateway *web.Gateway, prompter agent.Prompter, task, model string) (agent.Outcome, error) {
	fmt.Printf("  %s %s\n", styleDim.Render("Model:"), styleTitle.Render(model))
	fmt.Printf("  %s %s\n\n", styleDim.Render("Task: "), task)

	runner := &agent.ShellRunner{
		Timeout:    cfg.Budgets.CommandTimeoutDuration(),
		StdoutTail: cfg.Budgets.StdoutTailChars,
		StderrTail: cfg.Budgets.StderrTailChars,
		OnLine: func(stream agent.StreamName, line string) {
			if stream == agent.StreamStderr {
				fmt.Printf("  %s %s\n", styleStderr.Render("│"), line)
				return
			}
			fmt.Printf("  %s %s\n", styleStdout.Render("│"), line)
		},
	}

	gen := agent.GeneratorFunc(func(gctx context.Context, messages []agent.Message) (string, error) {
		return client.Complete(gctx, model, messages)
	})

	loop := agent.NewLoop(agent.LoopConfig{
		Task:         task,
		SystemPrompt: agent.BuildSystemPrompt(cfg.CustomInstructions, gateway.Available()),
		Budgets:      cfg.Budgets,
		Out:          os.Stdout,
		Spinner:      true,
	}, gen, runner, prompter, gateway)

	return loop.Run(ctx)
}

func reportOutcome(outcome agent.Outcome) {
	fmt.Println()
	switch outcome.Kind {
	case agent.OutcomeDone:
		fmt.Println(styleOK.Render("  ✓ Task complete") + styleDim.Render(fmt.Sprintf("  (%d steps)", outcome.Steps)))
		if summary := strings.TrimSpace(outcome.Summary); summary != "" {
			fmt.Println(renderSummary(summary))
		}
	case agent.OutcomeFailureCeiling:
		fmt.Println(styleFail.Render("  ✗ Task failed: too many consecutive invalid turns."))
	case agent.OutcomeIterationCeiling:
		fmt.Println(styleWarn.Render(fmt.Sprintf("  ! Task incomplete: step limit reached after %d steps.", outcome.Steps)))
	}
}

// renderSummary renders the model's summary as markdown; plain text
// when the renderer is unavailable (e.g. dumb terminals).
func renderSummary(summary string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(76))
	if err != nil {
		return "  " + summary
	}
	out, err := r.Render(summary)
	if err != nil {
		return "  " + summary
	}
	return out
}

func recordRun(ctx context.Context, task, model string, outcome agent.Outcome) {
	_, st, closeFn, err := openStore()
	if err != nil {
		log.Warn().Err(err).Msg("open store")
		return
	}
	defer closeFn()
	if _, err := st.RecordRun(ctx, task, model, outcome.Kind.String(), outcome.Steps, outcome.Summary); err != nil {
		log.Warn().Err(err).Msg("record run")
	}
}

func saveTask(ctx context.Context, task string) error {
	_, st, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()
	_, err = st.SaveTask(ctx, task)
	return err
}
