package stats_test

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/stats"
)

func entry(id, date, category string, minutes int) model.TimeEntry {
	return model.TimeEntry{ID: id, Date: date, StartTime: "08:00", EndTime: "09:00", Duration: minutes, Task: "task " + id, Category: category}
}

func fromMinutes(mins []int, category string) []model.TimeEntry {
	out := make([]model.TimeEntry, 0, len(mins))
	for i, m := range mins {
		out = append(out, entry(string(rune('a'+i%26)), "2024-01-01", category, m))
	}
	return out
}

func TestTotalHours(t *testing.T) {
	assert.Equal(t, 0.0, stats.TotalHours(nil))
	assert.Equal(t, 0.0, stats.TotalHours([]model.TimeEntry{}))
	assert.InDelta(t, 2.5, stats.TotalHours(fromMinutes([]int{90, 60}, "Other")), 1e-9)
}

func TestTotalHoursAdditive(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("TotalHours(A ++ B) == TotalHours(A) + TotalHours(B)", prop.ForAll(
		func(a, b []int) bool {
			ea, eb := fromMinutes(a, "A"), fromMinutes(b, "B")
			joined := append(append([]model.TimeEntry{}, ea...), eb...)
			return math.Abs(stats.TotalHours(joined)-(stats.TotalHours(ea)+stats.TotalHours(eb))) < 1e-9
		},
		gen.SliceOf(gen.IntRange(1, 1439)),
		gen.SliceOf(gen.IntRange(1, 1439)),
	))

	properties.TestingRun(t)
}

func TestDashboard(t *testing.T) {
	// Wednesday 2024-03-13; week starts Sunday 2024-03-10.
	ref := time.Date(2024, 3, 13, 12, 0, 0, 0, time.Local)
	entries := []model.TimeEntry{
		entry("old", "2024-02-28", "Training", 120),
		entry("month", "2024-03-04", "Training", 60),
		entry("week", "2024-03-11", "Meetings", 30),
		entry("today", "2024-03-13", "Meetings", 30),
	}
	user := &model.User{TargetHours: 8}

	got := stats.Dashboard(entries, user, ref)
	assert.InDelta(t, 4.0, got.TotalHours, 1e-9)
	assert.InDelta(t, 1.0, got.WeeklyHours, 1e-9)
	assert.InDelta(t, 2.0, got.MonthlyHours, 1e-9)
	assert.InDelta(t, 50.0, got.CompletionPercentage, 1e-9)
}

func TestDashboardWithoutUser(t *testing.T) {
	entries := fromMinutes([]int{600, 600}, "Training")
	got := stats.Dashboard(entries, nil, time.Now())
	assert.InDelta(t, 20.0, got.TotalHours, 1e-9)
	assert.Equal(t, 0.0, got.CompletionPercentage)
}

func TestDashboardCompletionClamped(t *testing.T) {
	entries := fromMinutes([]int{25 * 60}, "Training")
	got := stats.Dashboard(entries, &model.User{TargetHours: 10}, time.Now())
	assert.Equal(t, 100.0, got.CompletionPercentage)
}

func TestCompletionProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("completion stays within [0, 100]", prop.ForAll(
		func(total, target float64) bool {
			c := stats.Completion(total, target)
			return c >= 0 && c <= 100
		},
		gen.Float64Range(0, 10000),
		gen.Float64Range(-10, 2000),
	))

	properties.TestingRun(t)
}

func TestCategorySummariesScenario(t *testing.T) {
	entries := []model.TimeEntry{
		entry("1", "2024-01-01", "Training", 120),
		entry("2", "2024-01-01", "Meetings", 60),
		entry("3", "2024-01-02", "Training", 60),
	}

	got := stats.CategorySummaries(entries)
	require.Len(t, got, 2)
	assert.Equal(t, "Training", got[0].Category)
	assert.InDelta(t, 3.0, got[0].Hours, 1e-9)
	assert.InDelta(t, 75.0, got[0].Percentage, 1e-9)
	assert.Equal(t, "Meetings", got[1].Category)
	assert.InDelta(t, 1.0, got[1].Hours, 1e-9)
	assert.InDelta(t, 25.0, got[1].Percentage, 1e-9)
}

func TestCategorySummariesEmpty(t *testing.T) {
	assert.Empty(t, stats.CategorySummaries(nil))
}

func TestCategorySummariesZeroMinutes(t *testing.T) {
	got := stats.CategorySummaries([]model.TimeEntry{entry("1", "2024-01-01", "Other", 0)})
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Percentage)
}

func TestCategorySummariesKeepsUnknownCategories(t *testing.T) {
	got := stats.CategorySummaries([]model.TimeEntry{
		entry("1", "2024-01-01", "Shadowing", 30),
		entry("2", "2024-01-01", "", 30),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Shadowing", got[0].Category)
	assert.Equal(t, "", got[1].Category)
}

func TestCategoryPercentagesSumTo100(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	categories := []string{"Training", "Meetings", "Research", "Other"}

	properties.Property("percentages sum to 100", prop.ForAll(
		func(mins []int) bool {
			entries := make([]model.TimeEntry, 0, len(mins))
			for i, m := range mins {
				entries = append(entries, entry("e", "2024-01-01", categories[i%len(categories)], m))
			}
			var sum float64
			for _, s := range stats.CategorySummaries(entries) {
				sum += s.Percentage
			}
			return math.Abs(sum-100) < 1e-6
		},
		gen.SliceOfN(8, gen.IntRange(1, 600)),
	))

	properties.TestingRun(t)
}

func TestHoursByCategory(t *testing.T) {
	ref := time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local)
	entries := []model.TimeEntry{
		entry("1", "2024-01-01", "Training", 60),
		entry("2", "2024-01-02", "Meetings", 30),
	}

	got := stats.HoursByCategory(entries, model.FrameDay, ref)
	require.Len(t, got, 1)
	assert.Equal(t, "Meetings", got[0].Category)
	assert.InDelta(t, 100.0, got[0].Percentage, 1e-9)
}

func TestMilestones(t *testing.T) {
	tests := []struct {
		before, after float64
		want          []int
	}{
		{0, 10, nil},
		{20, 30, []int{25}},
		{24.9, 100, []int{25, 50, 75, 100}},
		{50, 50, nil},
		{60, 40, nil},
		{75, 99.9, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stats.Milestones(tt.before, tt.after), "%v -> %v", tt.before, tt.after)
	}
}
