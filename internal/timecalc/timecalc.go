package timecalc

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/ojt-tracker/internal/model"
)

var (
	// ErrInvalidTime is returned when a clock string is not HH:MM.
	ErrInvalidTime = errors.New("invalid time of day")
	// ErrInvalidRange is returned when the end time is not after the start time.
	ErrInvalidRange = errors.New("end time must be after start time")
)

// GenerateID returns a new random entry or profile ID.
func GenerateID() string {
	return uuid.NewString()
}

// ParseClock parses a zero-padded 24h "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != len(model.ClockLayout) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	t, err := time.Parse(model.ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ComputeDuration returns end-start in whole minutes, both read as times of
// day on the same date.
func ComputeDuration(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e <= s {
		return 0, fmt.Errorf("%w: %s-%s", ErrInvalidRange, start, end)
	}
	return e - s, nil
}

// FormatDuration formats minutes as "2h 5m".
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatHours formats fractional hours with one decimal, e.g. "12.5".
func FormatHours(h float64) string {
	return fmt.Sprintf("%.1f", math.Round(h*10)/10)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// WeekStart returns midnight of the Sunday that starts the week containing t.
func WeekStart(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

// MonthStart returns midnight of the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate reads a YYYY-MM-DD entry date as local midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, date, loc)
}
