package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welth-app/welth/internal/domain/plan"
	"github.com/welth-app/welth/internal/tracking"
	"github.com/welth-app/welth/pkg/client"
)

func fetchedPlans() []client.Plan {
	morning := "mañana"
	return []client.Plan{
		{
			ID:        "p2",
			CreatedAt: "2026-03-08T09:00:00Z",
			Summary:   "Mejor descanso",
			Assessment: client.Assessment{
				WellbeingScore:           7.5,
				StressLevel:              4,
				SleepRepairScore:         6,
				ExerciseFrequencyPerWeek: 3,
			},
			Habits: []client.Habit{
				{ID: "h1", Title: "Caminar", Priority: "high", TimeOfDay: &morning},
				{ID: "h2", Title: "Leer", Priority: "low"},
			},
		},
		{
			ID:        "p1",
			CreatedAt: "2026-03-01T09:00:00Z",
			Assessment: client.Assessment{
				WellbeingScore:           5,
				StressLevel:              6,
				SleepRepairScore:         5,
				ExerciseFrequencyPerWeek: 1,
			},
			Habits: []client.Habit{{ID: "h3", Title: "Dormir", Priority: "high"}},
		},
		{ID: "p0", CreatedAt: "not a date"},
	}
}

func TestToDomainPlans(t *testing.T) {
	plans := toDomainPlans(fetchedPlans())
	require.Len(t, plans, 3)

	assert.Equal(t, "p2", plans[0].ID)
	assert.Equal(t, time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC), plans[0].CreatedAt.UTC())
	assert.Equal(t, 7.5, plans[0].Assessment.WellbeingScore)
	require.Len(t, plans[0].Habits, 2)
	assert.Equal(t, plan.PriorityHigh, plans[0].Habits[0].Priority)
	require.NotNil(t, plans[0].Habits[0].TimeOfDay)
	assert.Equal(t, "mañana", *plans[0].Habits[0].TimeOfDay)
	assert.Equal(t, 1, plans[0].HighPriorityCount())

	assert.True(t, plans[2].CreatedAt.IsZero())
	assert.Empty(t, plans[2].Habits)
}

func TestRenderProgress(t *testing.T) {
	t.Run("newest against prior", func(t *testing.T) {
		progress := tracking.Derive(toDomainPlans(fetchedPlans()[:2]), "")

		var buf bytes.Buffer
		renderProgress(&buf, progress)
		out := buf.String()

		assert.Contains(t, out, "Plan p2")
		assert.Contains(t, out, tracking.ComparisonPrior+" (1 plans)")
		assert.Contains(t, out, "+2.5/10")
		assert.Contains(t, out, "-2/10")
		assert.Contains(t, out, "+2/sem")
		assert.Contains(t, out, "2026-03-01")
		assert.Contains(t, out, "2 (1 alta)")
	})

	t.Run("single plan", func(t *testing.T) {
		progress := tracking.Derive(toDomainPlans(fetchedPlans()[:1]), "")

		var buf bytes.Buffer
		renderProgress(&buf, progress)

		assert.Contains(t, buf.String(), "At least two evaluations")
	})

	t.Run("no plans", func(t *testing.T) {
		var buf bytes.Buffer
		renderProgress(&buf, tracking.Derive(nil, ""))

		assert.Equal(t, "No plans yet\n", buf.String())
	})
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "2026-03-08", formatDate("2026-03-08T23:30:00Z"))
	assert.Equal(t, "-", formatDate(""))

	assert.Equal(t, "[H] alta", formatPriority("HIGH"))
	assert.Equal(t, "other", formatPriority("other"))
	assert.Equal(t, "[+] premium", formatTier("premium"))
	assert.Equal(t, "[ ] free", formatTier("free"))

	assert.Equal(t, "ñandú", truncate("ñandú", 5))
	assert.Equal(t, "ña...", truncate("ñandúes", 5))
}
