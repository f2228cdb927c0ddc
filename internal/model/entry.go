package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Date and clock layouts used by the stored documents.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Entry sources.
const (
	SourceManual  = "manual"
	SourceOutlook = "outlook"
)

// ErrInvalidEntry is returned when a time entry fails construction checks.
var ErrInvalidEntry = errors.New("invalid time entry")

// Categories is the closed set offered when logging hours. Aggregation
// groups by whatever string an entry carries and never consults this list.
var Categories = []string{
	"Administrative",
	"Technical Skills",
	"Project Work",
	"Meetings",
	"Training",
	"Research",
	"Documentation",
	"Other",
}

// TimeEntry is one logged OJT activity.
type TimeEntry struct {
	ID         string `json:"id" yaml:"id"`
	Date       string `json:"date" yaml:"date"`
	StartTime  string `json:"startTime" yaml:"startTime"`
	EndTime    string `json:"endTime" yaml:"endTime"`
	Duration   int    `json:"duration" yaml:"duration"` // minutes
	Task       string `json:"task" yaml:"task"`
	Category   string `json:"category" yaml:"category"`
	Notes      string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
	ExternalID string `json:"externalId,omitempty" yaml:"externalId,omitempty"`
}

// DurationFunc computes minutes between two HH:MM clock strings.
type DurationFunc func(start, end string) (int, error)

// NewTimeEntry validates the raw fields and returns an entry with a fresh ID
// and a derived duration. The duration engine is passed in so model stays
// free of time arithmetic.
func NewTimeEntry(date, start, end, task, category, notes string, duration DurationFunc) (TimeEntry, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return TimeEntry{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidEntry, date)
	}
	task = strings.TrimSpace(task)
	if len([]rune(task)) < 3 {
		return TimeEntry{}, fmt.Errorf("%w: task description must be at least 3 characters", ErrInvalidEntry)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return TimeEntry{}, fmt.Errorf("%w: category is required", ErrInvalidEntry)
	}
	mins, err := duration(start, end)
	if err != nil {
		return TimeEntry{}, err
	}
	return TimeEntry{
		ID:        uuid.NewString(),
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Duration:  mins,
		Task:      task,
		Category:  category,
		Notes:     strings.TrimSpace(notes),
		Source:    SourceManual,
	}, nil
}

// IsKnownCategory reports whether c is one of Categories.
func IsKnownCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}
