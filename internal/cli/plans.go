package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/welth-app/welth/internal/domain/plan"
	"github.com/welth-app/welth/internal/tracking"
	"github.com/welth-app/welth/pkg/client"
)

func newPlansCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Show the latest habit plan, or every plan with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			if all {
				plans, err := apiClient.Plans().List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list plans: %w", err)
				}
				if getOutputFormat() != "table" {
					return printOutput(plans)
				}

				table := NewTableTo(out, "ID", "DATE", "WELLBEING", "STRESS", "SLEEP", "EXERCISE", "HABITS")
				for _, p := range plans {
					table.AddRow(
						p.ID,
						formatDate(p.CreatedAt),
						fmt.Sprintf("%.1f", p.Assessment.WellbeingScore),
						fmt.Sprintf("%.1f", p.Assessment.StressLevel),
						fmt.Sprintf("%.1f", p.Assessment.SleepRepairScore),
						fmt.Sprintf("%.1f", p.Assessment.ExerciseFrequencyPerWeek),
						fmt.Sprintf("%d", len(p.Habits)),
					)
				}
				table.Render()
				return nil
			}

			latest, err := apiClient.Plans().Latest(ctx)
			if err != nil {
				return fmt.Errorf("failed to load plan: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(latest)
			}

			fmt.Fprintf(out, "Plan %s (%s)\n\n%s\n\n", latest.ID, formatDate(latest.CreatedAt), latest.Summary)
			table := NewTableTo(out, "PRIORITY", "HABIT", "FREQUENCY", "CATEGORY")
			for _, h := range latest.Habits {
				table.AddRow(formatPriority(h.Priority), truncate(h.Title, 50), h.Frequency, h.Category)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every plan (premium)")

	return cmd
}

func newProgressCmd() *cobra.Command {
	var planID string

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Compare a plan against your previous evaluations (premium)",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := apiClient.Plans().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list plans: %w", err)
			}

			progress := tracking.Derive(toDomainPlans(plans), planID)
			if getOutputFormat() != "table" {
				return printOutput(progress)
			}

			renderProgress(cmd.OutOrStdout(), progress)
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "plan to compare (default: newest)")

	return cmd
}

// toDomainPlans converts fetched plans for local derivation. Unparseable
// dates become the zero time.
func toDomainPlans(in []client.Plan) []*plan.Plan {
	out := make([]*plan.Plan, 0, len(in))
	for _, p := range in {
		habits := make([]plan.Habit, 0, len(p.Habits))
		for _, h := range p.Habits {
			habits = append(habits, plan.Habit{
				ID:          h.ID,
				Title:       h.Title,
				Description: h.Description,
				Category:    h.Category,
				Frequency:   h.Frequency,
				TimeOfDay:   h.TimeOfDay,
				Priority:    plan.Priority(h.Priority),
				Reasoning:   h.Reasoning,
			})
		}
		out = append(out, &plan.Plan{
			ID:        p.ID,
			CreatedAt: tracking.ParseTimestamp(p.CreatedAt),
			Summary:   p.Summary,
			Assessment: plan.Assessment{
				WellbeingScore:           p.Assessment.WellbeingScore,
				StressLevel:              p.Assessment.StressLevel,
				SleepRepairScore:         p.Assessment.SleepRepairScore,
				ExerciseFrequencyPerWeek: p.Assessment.ExerciseFrequencyPerWeek,
			},
			Habits: habits,
		})
	}
	return out
}

func renderProgress(w io.Writer, p tracking.Progress) {
	if p.SelectedPlanID == "" {
		fmt.Fprintln(w, "No plans yet")
		return
	}

	fmt.Fprintf(w, "Plan %s\n", p.SelectedPlanID)
	if len(p.Series) < 2 {
		fmt.Fprintln(w, "At least two evaluations are needed to show progress")
		return
	}

	if p.Delta != nil {
		fmt.Fprintf(w, "%s (%d plans)\n\n", p.Comparison, p.BaselineSize)
		table := NewTableTo(w, "METRIC", "DELTA")
		table.AddRow("Bienestar", tracking.FormatDelta(tracking.MetricWellbeing, p.Delta.Wellbeing))
		table.AddRow("Estrés", tracking.FormatDelta(tracking.MetricStress, p.Delta.Stress))
		table.AddRow("Sueño reparador", tracking.FormatDelta(tracking.MetricSleep, p.Delta.Sleep))
		table.AddRow("Ejercicio", tracking.FormatDelta(tracking.MetricExercise, p.Delta.Exercise))
		table.AddRow("Hábitos", tracking.FormatDelta(tracking.MetricHabits, p.Delta.Habits))
		table.AddRow("Hábitos prioritarios", tracking.FormatDelta(tracking.MetricHighHabits, p.Delta.HighHabits))
		table.Render()
		fmt.Fprintln(w)
	}

	table := NewTableTo(w, "DATE", "WELLBEING", "STRESS", "SLEEP", "EXERCISE", "HABITS")
	for _, pt := range p.Series {
		date := "-"
		if pt.Timestamp != 0 {
			date = time.UnixMilli(pt.Timestamp).UTC().Format("2006-01-02")
		}
		table.AddRow(
			date,
			fmt.Sprintf("%.1f", pt.Wellbeing),
			fmt.Sprintf("%.1f", pt.Stress),
			fmt.Sprintf("%.1f", pt.Sleep),
			fmt.Sprintf("%.1f", pt.Exercise),
			fmt.Sprintf("%d (%d alta)", pt.Habits, pt.HighHabits),
		)
	}
	table.Render()
}

func formatDate(rfc3339 string) string {
	t := tracking.ParseTimestamp(rfc3339)
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}
