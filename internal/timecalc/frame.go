package timecalc

import (
	"time"

	"github.com/Tiliavir/ojt-tracker/internal/model"
)

// Classify reports whether entry belongs to frame relative to ref.
//
// Week and month are lower bounds only: entries dated after ref still match.
// Weeks start on Sunday. An entry whose date does not parse only matches
// FrameAll.
func Classify(entry model.TimeEntry, frame model.TimeFrame, ref time.Time) bool {
	switch frame {
	case model.FrameAll:
		return true
	case model.FrameDay:
		return entry.Date == ref.Format(model.DateLayout)
	case model.FrameWeek, model.FrameMonth:
		d, err := ParseDate(entry.Date, ref.Location())
		if err != nil {
			return false
		}
		lower := WeekStart(ref)
		if frame == model.FrameMonth {
			lower = MonthStart(ref)
		}
		return !d.Before(lower)
	}
	return false
}

// FilterByFrame keeps the entries that Classify accepts, in input order.
func FilterByFrame(entries []model.TimeEntry, frame model.TimeFrame, ref time.Time) []model.TimeEntry {
	out := make([]model.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if Classify(e, frame, ref) {
			out = append(out, e)
		}
	}
	return out
}
