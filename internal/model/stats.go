package model

import "fmt"

// DashboardStats is derived from the entry list and the profile; never stored.
type DashboardStats struct {
	TotalHours           float64 `json:"totalHours" yaml:"totalHours"`
	WeeklyHours          float64 `json:"weeklyHours" yaml:"weeklyHours"`
	MonthlyHours         float64 `json:"monthlyHours" yaml:"monthlyHours"`
	CompletionPercentage float64 `json:"completionPercentage" yaml:"completionPercentage"`
}

// CategorySummary aggregates one category within a set of entries.
type CategorySummary struct {
	Category   string  `json:"category" yaml:"category"`
	Hours      float64 `json:"hours" yaml:"hours"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// TimeFrame is a filtering window anchored to a reference instant.
type TimeFrame string

const (
	FrameDay   TimeFrame = "day"
	FrameWeek  TimeFrame = "week"
	FrameMonth TimeFrame = "month"
	FrameAll   TimeFrame = "all"
)

// ParseTimeFrame converts a flag value into a TimeFrame.
func ParseTimeFrame(s string) (TimeFrame, error) {
	switch TimeFrame(s) {
	case FrameDay, FrameWeek, FrameMonth, FrameAll:
		return TimeFrame(s), nil
	case "":
		return FrameAll, nil
	}
	return "", fmt.Errorf("unknown time frame %q (want day, week, month or all)", s)
}
