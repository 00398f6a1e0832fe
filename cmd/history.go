package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xvierd/countdown-cli/internal/domain"
)

var (
	historyLimit int
	historyClear bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent countdowns",
	Long:  `Show finished and abandoned countdowns, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()
		repo := app.storage.History()

		if historyClear {
			n, err := repo.DeleteAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintf(out, "Deleted %s %s.\n", humanize.Comma(n), pluralize(n, "run", "runs"))
			return nil
		}

		limit := historyLimit
		if limit <= 0 {
			limit = app.config.History.Limit
		}

		runs, err := repo.FindRecent(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		if jsonOutput {
			runList := make([]map[string]interface{}, 0, len(runs))
			for _, run := range runs {
				runList = append(runList, map[string]interface{}{
					"id":         run.ID,
					"duration":   int(run.Duration / time.Second),
					"elapsed":    int(run.Elapsed / time.Second),
					"outcome":    string(run.Outcome),
					"started_at": run.StartedAt.Format(time.RFC3339),
					"ended_at":   run.EndedAt.Format(time.RFC3339),
				})
			}
			data := map[string]interface{}{
				"runs":  runList,
				"count": len(runList),
			}
			jsonData, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal history: %w", err)
			}
			fmt.Fprintln(out, string(jsonData))
			return nil
		}

		if len(runs) == 0 {
			fmt.Fprintln(out, "No countdowns yet.")
			return nil
		}

		fmt.Fprintf(out, "📜 Recent countdowns (%d):\n\n", len(runs))
		for _, run := range runs {
			fmt.Fprintf(out, "%s %-9s  %-10s %s\n",
				getOutcomeIcon(run.Outcome),
				formatMinutes(run.Duration),
				domain.GetOutcomeLabel(run.Outcome),
				humanize.Time(run.EndedAt))
			if !run.IsCompleted() {
				fmt.Fprintf(out, "   stopped after %s\n", formatMinutes(run.Elapsed))
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Number of runs to show (default from config)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete all recorded runs")
}

func getOutcomeIcon(outcome domain.RunOutcome) string {
	switch outcome {
	case domain.RunOutcomeCompleted:
		return "✅"
	case domain.RunOutcomeAbandoned:
		return "⏹️"
	default:
		return "❓"
	}
}

func pluralize(n int64, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
