package stats

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

// AllCategories disables the category filter of a Query.
const AllCategories = "all"

// Query narrows an entry list the way the entry table does.
type Query struct {
	Frame    model.TimeFrame
	Search   string // matched against task and notes, case-insensitively
	Category string // exact match; "" or AllCategories matches everything
}

// Apply filters entries by frame, then search text, then category.
// Input order is preserved.
func Apply(entries []model.TimeEntry, q Query, ref time.Time) []model.TimeEntry {
	frame := q.Frame
	if frame == "" {
		frame = model.FrameAll
	}
	filtered := timecalc.FilterByFrame(entries, frame, ref)

	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.Search))

	out := filtered[:0]
	for _, e := range filtered {
		if needle != "" &&
			!strings.Contains(fold.String(e.Task), needle) &&
			!strings.Contains(fold.String(e.Notes), needle) {
			continue
		}
		if q.Category != "" && q.Category != AllCategories && e.Category != q.Category {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SortForDisplay returns a copy ordered newest date first and, within a day,
// by start time.
func SortForDisplay(entries []model.TimeEntry) []model.TimeEntry {
	out := make([]model.TimeEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// DistinctCategories lists the categories present in entries, in order of
// first occurrence.
func DistinctCategories(entries []model.TimeEntry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}
