package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type menuItem struct {
	id    string
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

type menuModel struct {
	list   list.Model
	choice string
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(menuItem); ok {
				m.choice = item.id
			}
			return m, tea.Quit
		case "q", "ctrl+c", "esc":
			m.choice = "quit"
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m menuModel) View() string {
	return "\n" + m.list.View()
}

// pickFromList shows a selection list and returns the chosen item id,
// or "quit" when the user backs out.
func pickFromList(title string, items []menuItem) (string, error) {
	entries := make([]list.Item, 0, len(items))
	for _, it := range items {
		entries = append(entries, it)
	}
	delegate := list.NewDefaultDelegate()
	l := list.New(entries, delegate, 72, 4+len(items)*3)
	l.Title = title
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)

	prog := tea.NewProgram(menuModel{list: l})
	final, err := prog.Run()
	if err != nil {
		return "", fmt.Errorf("run menu: %w", err)
	}
	m, ok := final.(menuModel)
	if !ok || m.choice == "" {
		return "quit", nil
	}
	return m.choice, nil
}

func mainMenuItems() []menuItem {
	return []menuItem{
		{id: "run", title: "Run a task", desc: "auto-select model"},
		{id: "run-model", title: "Run a task with a chosen model", desc: "pick from installed models"},
		{id: "saved", title: "Saved tasks", desc: "run a previously saved task"},
		{id: "check", title: "System check", desc: "diagnose ollama setup"},
		{id: "runs", title: "Recent runs", desc: "outcome history"},
		{id: "quit", title: "Quit", desc: ""},
	}
}

// runMenu drives the interactive session shown when no task argument
// is given. Everything it does is also reachable via subcommands.
func runMenu(ctx context.Context) error {
	prompter := newStdinPrompter()
	for {
		choice, err := pickFromList("Ollama Terminal", mainMenuItems())
		if err != nil {
			return err
		}
		switch choice {
		case "run":
			task, err := prompter.readLine("  What do you want me to do?\n  > ")
			if err != nil || strings.TrimSpace(task) == "" {
				continue
			}
			if err := runTask(ctx, task, ""); err != nil {
				fatal(err)
			}
		case "run-model":
			model, ok := pickModel(ctx)
			if !ok {
				continue
			}
			task, err := prompter.readLine("  What do you want me to do?\n  > ")
			if err != nil || strings.TrimSpace(task) == "" {
				continue
			}
			if err := runTask(ctx, task, model); err != nil {
				fatal(err)
			}
		case "saved":
			if err := runSavedTask(ctx); err != nil {
				fatal(err)
			}
		case "check":
			if err := runSubcommand(ctx, checkCmd()); err != nil {
				fatal(err)
			}
		case "runs":
			if err := runSubcommand(ctx, runsCmd()); err != nil {
				fatal(err)
			}
		case "quit":
			fmt.Println(styleDim.Render("  Bye."))
			return nil
		}
	}
}

func pickModel(ctx context.Context) (string, bool) {
	cfg, _, err := loadConfig()
	if err != nil {
		fatal(err)
		return "", false
	}
	client := newClient(cfg)
	if !client.EnsureRunning(ctx) {
		fatal(fmt.Errorf("ollama server is not reachable at %s", client.BaseURL()))
		return "", false
	}
	models, err := client.Models(ctx)
	if err != nil {
		fatal(err)
		return "", false
	}
	if len(models) == 0 {
		fmt.Println(styleWarn.Render("  No models installed. Use: ollaterm pull llama3"))
		return "", false
	}
	items := make([]menuItem, 0, len(models))
	for _, m := range models {
		items = append(items, menuItem{id: m, title: m})
	}
	choice, err := pickFromList("Select Model", items)
	if err != nil || choice == "quit" {
		return "", false
	}
	return choice, true
}

func runSavedTask(ctx context.Context) error {
	_, st, closeFn, err := openStore()
	if err != nil {
		return err
	}
	tasks, err := st.ListTasks(ctx)
	closeFn()
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println(styleDim.Render("  No saved tasks yet. Tasks can be saved after completion."))
		return nil
	}
	items := make([]menuItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, menuItem{id: t.Text, title: t.Text})
	}
	choice, err := pickFromList("Run Saved Task", items)
	if err != nil || choice == "quit" {
		return err
	}
	return runTask(ctx, choice, "")
}

func runSubcommand(ctx context.Context, cmd *cobra.Command) error {
	cmd.SetContext(ctx)
	return cmd.RunE(cmd, nil)
}
