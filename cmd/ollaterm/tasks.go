package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metalagman/ollaterm/internal/store"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage saved tasks",
	}
	cmd.AddCommand(tasksListCmd(), tasksAddCmd(), tasksDeleteCmd(), tasksRunCmd())
	return cmd
}

func tasksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, st, closeFn, err := openStore()
			if err != nil {
				return err
			}
			defer closeFn()
			tasks, err := st.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Println(styleDim.Render("  No saved tasks yet. Tasks can be saved after completion."))
				return nil
			}
			for i, t := range tasks {
				fmt.Printf("  %d. %s  %s\n", i+1, t.Text, styleDim.Render(t.ID[:8]))
			}
			return nil
		},
	}
}

func tasksAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Save a task for reuse",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("task text is required")
			}
			_, st, closeFn, err := openStore()
			if err != nil {
				return err
			}
			defer closeFn()
			if _, err := st.SaveTask(cmd.Context(), text); err != nil {
				return err
			}
			fmt.Println(styleOK.Render("  Saved."))
			return nil
		},
	}
}

func tasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete a saved task by its list number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, closeFn, err := openStore()
			if err != nil {
				return err
			}
			defer closeFn()
			task, err := taskByNumber(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			if err := st.DeleteTask(cmd.Context(), task.ID); err != nil {
				return err
			}
			fmt.Println(styleOK.Render("  Removed: " + task.Text))
			return nil
		},
	}
}

func tasksRunCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "run <number>",
		Short: "Run a saved task by its list number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, closeFn, err := openStore()
			if err != nil {
				return err
			}
			task, err := taskByNumber(cmd.Context(), st, args[0])
			closeFn()
			if err != nil {
				return err
			}
			return runTask(cmd.Context(), task.Text, model)
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model to use (default: auto-select)")
	return cmd
}

func taskByNumber(ctx context.Context, st *store.Store, raw string) (store.Task, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return store.Task{}, fmt.Errorf("invalid task number %q", raw)
	}
	tasks, err := st.ListTasks(ctx)
	if err != nil {
		return store.Task{}, err
	}
	if n > len(tasks) {
		return store.Task{}, fmt.Errorf("task number %d out of range (have %d)", n, len(tasks))
	}
	return tasks[n-1], nil
}
