package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent answer evaluations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().QueryEvaluations(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query evaluations: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No answers evaluated yet.")
			return nil
		}

		fmt.Fprintf(out, "%-19s  %-12s  %-8s  %-9s  %5s  %s\n",
			"Timestamp", "State", "Mode", "Provider", "Score", "Question")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, ev := range events {
			score := "-"
			if ev.State == "complete" {
				score = fmt.Sprintf("%.1f", ev.OverallScore)
			}
			provider := ev.Provider
			if provider == "" {
				provider = "-"
			}
			fmt.Fprintf(out, "%-19s  %-12s  %-8s  %-9s  %5s  %s\n",
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				ev.State,
				ev.RatingMode,
				provider,
				score,
				truncate(strings.Join(strings.Fields(ev.Question), " "), 40),
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of evaluations to show")
}
