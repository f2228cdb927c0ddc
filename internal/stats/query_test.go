package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/stats"
)

func entryIDs(entries []model.TimeEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	ref := time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local)
	entries := []model.TimeEntry{
		{ID: "1", Date: "2024-01-02", Task: "Wrote API docs", Category: "Documentation"},
		{ID: "2", Date: "2024-01-02", Task: "Standup", Notes: "discussed the API", Category: "Meetings"},
		{ID: "3", Date: "2023-11-20", Task: "Onboarding", Category: "Training"},
		{ID: "4", Date: "2024-01-01", Task: "ÉCOLE survey", Category: "Research"},
	}

	tests := []struct {
		name string
		q    stats.Query
		want []string
	}{
		{"no filter", stats.Query{}, []string{"1", "2", "3", "4"}},
		{"frame", stats.Query{Frame: model.FrameDay}, []string{"1", "2"}},
		{"search task and notes", stats.Query{Search: "api"}, []string{"1", "2"}},
		{"search folds case", stats.Query{Search: "école"}, []string{"4"}},
		{"category", stats.Query{Category: "Meetings"}, []string{"2"}},
		{"all categories", stats.Query{Category: stats.AllCategories}, []string{"1", "2", "3", "4"}},
		{"combined", stats.Query{Frame: model.FrameWeek, Search: "api", Category: "Documentation"}, []string{"1"}},
		{"no match", stats.Query{Search: "nothing"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stats.Apply(entries, tt.q, ref)
			assert.Equal(t, tt.want, entryIDs(got))
		})
	}
}

func TestSortForDisplay(t *testing.T) {
	entries := []model.TimeEntry{
		{ID: "a", Date: "2024-01-01", StartTime: "13:00"},
		{ID: "b", Date: "2024-01-02", StartTime: "09:00"},
		{ID: "c", Date: "2024-01-01", StartTime: "08:00"},
		{ID: "d", Date: "2024-01-02", StartTime: "07:30"},
	}

	got := stats.SortForDisplay(entries)
	assert.Equal(t, []string{"d", "b", "c", "a"}, entryIDs(got))
	assert.Equal(t, "a", entries[0].ID, "input must not be reordered")
}

func TestDistinctCategories(t *testing.T) {
	entries := []model.TimeEntry{
		{Category: "Training"}, {Category: "Meetings"}, {Category: "Training"}, {Category: "Other"},
	}
	assert.Equal(t, []string{"Training", "Meetings", "Other"}, stats.DistinctCategories(entries))
	assert.Nil(t, stats.DistinctCategories(nil))
}
