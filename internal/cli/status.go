package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tier, usage and the latest plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			ent, err := apiClient.Me(ctx)
			if err != nil {
				return fmt.Errorf("failed to load account: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				summary := map[string]interface{}{"account": ent}
				if latest, err := apiClient.Plans().Latest(ctx); err == nil {
					summary["latestPlan"] = latest
				}
				return printOutput(summary)
			}

			server := "ready"
			if _, err := apiClient.Ready(ctx); err != nil {
				server = "not ready"
			}

			fmt.Println("Welth")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Printf("  Server:        %s\n", server)
			fmt.Printf("  Tier:          %s\n", formatTier(ent.Tier))
			if ent.IsPremium {
				fmt.Printf("  Evaluations:   %d\n", ent.EvaluationCount)
			} else {
				fmt.Printf("  Evaluations:   %d of %d free (%d left)\n", ent.EvaluationCount, ent.FreeLimit, ent.FreeRemaining)
			}

			latest, err := apiClient.Plans().Latest(ctx)
			if err != nil {
				fmt.Printf("  Latest plan:   (none)\n")
				return nil
			}
			fmt.Printf("  Latest plan:   %s\n", truncate(latest.Summary, 60))
			fmt.Printf("  Habits:        %d\n", len(latest.Habits))
			return nil
		},
	}
}
