// Package stats reduces time entries into dashboard figures and category
// breakdowns. Every function is pure; the reference instant is always passed
// in so results are deterministic.
package stats

import (
	"math"
	"time"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

// totalMinutes sums entry durations.
func totalMinutes(entries []model.TimeEntry) int {
	var sum int
	for _, e := range entries {
		sum += e.Duration
	}
	return sum
}

// TotalHours returns the summed duration of entries in hours.
func TotalHours(entries []model.TimeEntry) float64 {
	return float64(totalMinutes(entries)) / 60
}

// Completion returns total/target as a percentage clamped to [0, 100].
// A non-positive target yields 0.
func Completion(totalHours, targetHours float64) float64 {
	if targetHours <= 0 {
		return 0
	}
	return math.Max(0, math.Min(100, totalHours/targetHours*100))
}

// Dashboard computes the headline figures. A nil user means onboarding is
// incomplete and completion is reported as 0.
func Dashboard(entries []model.TimeEntry, user *model.User, ref time.Time) model.DashboardStats {
	total := TotalHours(entries)

	var target float64
	if user != nil {
		target = user.TargetHours
	}

	return model.DashboardStats{
		TotalHours:           total,
		WeeklyHours:          TotalHours(timecalc.FilterByFrame(entries, model.FrameWeek, ref)),
		MonthlyHours:         TotalHours(timecalc.FilterByFrame(entries, model.FrameMonth, ref)),
		CompletionPercentage: Completion(total, target),
	}
}

// CategorySummaries groups entries by their raw category string. Groups are
// returned in order of first occurrence; callers wanting another order must
// sort the result themselves.
func CategorySummaries(entries []model.TimeEntry) []model.CategorySummary {
	sums := make(map[string]int)
	var order []string
	for _, e := range entries {
		if _, seen := sums[e.Category]; !seen {
			order = append(order, e.Category)
		}
		sums[e.Category] += e.Duration
	}

	total := totalMinutes(entries)
	out := make([]model.CategorySummary, 0, len(order))
	for _, c := range order {
		var pct float64
		if total > 0 {
			pct = float64(sums[c]) / float64(total) * 100
		}
		out = append(out, model.CategorySummary{
			Category:   c,
			Hours:      float64(sums[c]) / 60,
			Percentage: pct,
		})
	}
	return out
}

// HoursByCategory filters entries to frame before summarising them.
func HoursByCategory(entries []model.TimeEntry, frame model.TimeFrame, ref time.Time) []model.CategorySummary {
	return CategorySummaries(timecalc.FilterByFrame(entries, frame, ref))
}

// milestones are the completion percentages worth announcing.
var milestones = []int{25, 50, 75, 100}

// Milestones returns the milestones crossed when completion moves from
// before to after. Nothing is returned when completion did not increase.
func Milestones(before, after float64) []int {
	var crossed []int
	for _, m := range milestones {
		if before < float64(m) && after >= float64(m) {
			crossed = append(crossed, m)
		}
	}
	return crossed
}
