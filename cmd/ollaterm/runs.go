package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent run history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, st, closeFn, err := openStore()
			if err != nil {
				return err
			}
			defer closeFn()
			records, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println(styleDim.Render("  No runs recorded yet."))
				return nil
			}
			for _, r := range records {
				mark := styleOK.Render("✓")
				if r.Outcome != "done" {
					mark = styleFail.Render("✗")
				}
				fmt.Printf("  %s %s  %s  %s\n", mark,
					styleDim.Render(r.CreatedAt.Local().Format(time.DateTime)),
					r.Task,
					styleDim.Render(fmt.Sprintf("%s, %d steps, %s", r.Model, r.Steps, r.Outcome)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
