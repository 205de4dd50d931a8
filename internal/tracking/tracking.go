// Package tracking derives progress series and baseline comparisons from a
// user's habit plans. It performs no I/O.
package tracking

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/welth-app/welth/internal/domain/plan"
)

// Comparison labels describing which baseline a delta was computed against
const (
	ComparisonPrior      = "vs promedio previo"
	ComparisonHistorical = "vs promedio histórico"
)

// Metric names used by FormatDelta
const (
	MetricWellbeing  = "wellbeing"
	MetricStress     = "stress"
	MetricSleep      = "sleep"
	MetricExercise   = "exercise"
	MetricHabits     = "habits"
	MetricHighHabits = "highHabits"
)

// Metrics holds the six tracked values of a plan, an average or a delta
type Metrics struct {
	Wellbeing  float64 `json:"wellbeing" yaml:"wellbeing"`
	Stress     float64 `json:"stress" yaml:"stress"`
	Sleep      float64 `json:"sleep" yaml:"sleep"`
	Exercise   float64 `json:"exercise" yaml:"exercise"`
	Habits     float64 `json:"habits" yaml:"habits"`
	HighHabits float64 `json:"highHabits" yaml:"highHabits"`
}

// Point is one chart sample. Timestamp is unix milliseconds, 0 when the plan
// has no usable creation time.
type Point struct {
	Timestamp  int64   `json:"ts" yaml:"ts"`
	Wellbeing  float64 `json:"wellbeing" yaml:"wellbeing"`
	Stress     float64 `json:"stress" yaml:"stress"`
	Sleep      float64 `json:"sleep" yaml:"sleep"`
	Exercise   float64 `json:"exercise" yaml:"exercise"`
	Habits     int     `json:"habits" yaml:"habits"`
	HighHabits int     `json:"highHabits" yaml:"highHabits"`
}

// Progress is the full derivation for one selected plan
type Progress struct {
	SelectedPlanID string   `json:"selectedPlanId" yaml:"selectedPlanId"`
	Series         []Point  `json:"series" yaml:"series"`
	Comparison     string   `json:"comparison,omitempty" yaml:"comparison,omitempty"`
	BaselineSize   int      `json:"baselineSize" yaml:"baselineSize"`
	Average        *Metrics `json:"average,omitempty" yaml:"average,omitempty"`
	Delta          *Metrics `json:"delta,omitempty" yaml:"delta,omitempty"`
}

// Timestamp returns the sort key of p in unix milliseconds
func Timestamp(p *plan.Plan) int64 {
	if p == nil || p.CreatedAt.IsZero() {
		return 0
	}
	return p.CreatedAt.UnixMilli()
}

// ParseTimestamp parses an RFC3339 instant, returning the zero time on failure
func ParseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SortAscending returns a copy of plans ordered oldest first
func SortAscending(plans []*plan.Plan) []*plan.Plan {
	out := append([]*plan.Plan(nil), plans...)
	sort.SliceStable(out, func(i, j int) bool { return Timestamp(out[i]) < Timestamp(out[j]) })
	return out
}

// SortDescending returns a copy of plans ordered newest first
func SortDescending(plans []*plan.Plan) []*plan.Plan {
	out := append([]*plan.Plan(nil), plans...)
	sort.SliceStable(out, func(i, j int) bool { return Timestamp(out[i]) > Timestamp(out[j]) })
	return out
}

// Series returns one point per plan, oldest first
func Series(plans []*plan.Plan) []Point {
	sorted := SortAscending(plans)
	points := make([]Point, 0, len(sorted))
	for _, p := range sorted {
		points = append(points, Point{
			Timestamp:  Timestamp(p),
			Wellbeing:  p.Assessment.WellbeingScore,
			Stress:     p.Assessment.StressLevel,
			Sleep:      p.Assessment.SleepRepairScore,
			Exercise:   p.Assessment.ExerciseFrequencyPerWeek,
			Habits:     len(p.Habits),
			HighHabits: p.HighPriorityCount(),
		})
	}
	return points
}

// Baseline returns the plans the selected plan is compared against and the
// matching comparison label. Plans strictly older than the selected one are
// preferred; when there are none every other plan is used. The result is
// empty when the selected plan is unknown or has no usable timestamp.
func Baseline(plans []*plan.Plan, selectedID string) ([]*plan.Plan, string) {
	selected := find(plans, selectedID)
	if selected == nil {
		return nil, ""
	}
	selectedTs := Timestamp(selected)
	if selectedTs == 0 {
		return nil, ""
	}

	sorted := SortAscending(plans)

	var prior []*plan.Plan
	for _, p := range sorted {
		ts := Timestamp(p)
		if ts != 0 && ts < selectedTs {
			prior = append(prior, p)
		}
	}
	if len(prior) > 0 {
		return prior, ComparisonPrior
	}

	var others []*plan.Plan
	for _, p := range sorted {
		if p.ID != selected.ID {
			others = append(others, p)
		}
	}
	return others, ComparisonHistorical
}

// Average returns the arithmetic mean of each metric, or nil for no plans
func Average(plans []*plan.Plan) *Metrics {
	if len(plans) == 0 {
		return nil
	}

	var sum Metrics
	for _, p := range plans {
		sum.Wellbeing += p.Assessment.WellbeingScore
		sum.Stress += p.Assessment.StressLevel
		sum.Sleep += p.Assessment.SleepRepairScore
		sum.Exercise += p.Assessment.ExerciseFrequencyPerWeek
		sum.Habits += float64(len(p.Habits))
		sum.HighHabits += float64(p.HighPriorityCount())
	}

	n := float64(len(plans))
	return &Metrics{
		Wellbeing:  sum.Wellbeing / n,
		Stress:     sum.Stress / n,
		Sleep:      sum.Sleep / n,
		Exercise:   sum.Exercise / n,
		Habits:     sum.Habits / n,
		HighHabits: sum.HighHabits / n,
	}
}

// Delta subtracts avg from the selected plan's metrics. Habit counts are
// compared against the rounded baseline mean.
func Delta(selected *plan.Plan, avg *Metrics) *Metrics {
	if selected == nil || avg == nil {
		return nil
	}
	return &Metrics{
		Wellbeing:  selected.Assessment.WellbeingScore - avg.Wellbeing,
		Stress:     selected.Assessment.StressLevel - avg.Stress,
		Sleep:      selected.Assessment.SleepRepairScore - avg.Sleep,
		Exercise:   selected.Assessment.ExerciseFrequencyPerWeek - avg.Exercise,
		Habits:     float64(len(selected.Habits)) - roundHalfUp(avg.Habits),
		HighHabits: float64(selected.HighPriorityCount()) - roundHalfUp(avg.HighHabits),
	}
}

// Derive computes the chart series and baseline comparison for selectedID.
// An empty or unknown selectedID selects the newest plan. With fewer than two
// plans the series and delta are omitted.
func Derive(plans []*plan.Plan, selectedID string) Progress {
	var progress Progress
	if len(plans) == 0 {
		return progress
	}

	selected := find(plans, selectedID)
	if selected == nil {
		selected = SortDescending(plans)[0]
	}
	progress.SelectedPlanID = selected.ID

	if len(plans) < 2 {
		return progress
	}

	progress.Series = Series(plans)

	baseline, label := Baseline(plans, selected.ID)
	if len(baseline) == 0 {
		return progress
	}
	progress.Comparison = label
	progress.BaselineSize = len(baseline)
	progress.Average = Average(baseline)
	progress.Delta = Delta(selected, progress.Average)

	return progress
}

// FormatDelta renders a delta with one decimal, an explicit sign and the
// metric's unit
func FormatDelta(metric string, v float64) string {
	rounded := roundHalfUp(v*10) / 10
	sign := ""
	if rounded >= 0 {
		sign = "+"
		rounded = math.Abs(rounded)
	}
	s := sign + strconv.FormatFloat(rounded, 'f', -1, 64)

	switch metric {
	case MetricExercise:
		return s + "/sem"
	case MetricWellbeing, MetricStress, MetricSleep:
		return s + "/10"
	}
	return s
}

func find(plans []*plan.Plan, id string) *plan.Plan {
	if id == "" {
		return nil
	}
	for _, p := range plans {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
