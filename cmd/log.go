package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/notify"
	"github.com/Tiliavir/ojt-tracker/internal/stats"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

var (
	logDate     string
	logStart    string
	logEnd      string
	logTask     string
	logCategory string
	logNotes    string
)

// notifier delivers milestone notifications; tests replace it.
var notifier notify.Notifier = notify.Desktop{}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log an OJT activity",
	Example: `  ojt log --start 09:00 --end 11:30 --task "Configured staging server" --category "Technical Skills"
  ojt log --date 2024-01-15 --start 13:00 --end 14:00 --task "Team standup" --category Meetings --notes "Sprint 4"`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func init() {
	f := logCmd.Flags()
	f.StringVar(&logDate, "date", "", "Date of the activity (YYYY-MM-DD); defaults to today")
	f.StringVar(&logStart, "start", "", "Start time (HH:MM, 24h)")
	f.StringVar(&logEnd, "end", "", "End time (HH:MM, 24h)")
	f.StringVar(&logTask, "task", "", "What you worked on")
	f.StringVar(&logCategory, "category", "", "Category: "+strings.Join(model.Categories, ", "))
	f.StringVar(&logNotes, "notes", "", "Optional notes")
	_ = logCmd.MarkFlagRequired("start")
	_ = logCmd.MarkFlagRequired("end")
	_ = logCmd.MarkFlagRequired("task")
	_ = logCmd.MarkFlagRequired("category")
}

func runLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now := app.now

	date := logDate
	if date == "" {
		date = now.Format(model.DateLayout)
	}
	category, err := knownCategory(logCategory)
	if err != nil {
		return err
	}
	entry, err := buildEntry(date, logStart, logEnd, logTask, category, logNotes, now)
	if err != nil {
		return err
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	user := s.LoadUser(ctx)
	before := stats.TotalHours(s.LoadEntries(ctx))

	if err := s.AddEntry(ctx, entry); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logged %s on %s: %s [%s]\n",
		timecalc.FormatDuration(entry.Duration), entry.Date, entry.Task, entry.Category)

	if user == nil {
		return nil
	}
	after := before + float64(entry.Duration)/60
	fmt.Fprintf(out, "Progress: %s / %s hours (%.0f%%)\n",
		timecalc.FormatHours(after), timecalc.FormatHours(user.TargetHours),
		stats.Completion(after, user.TargetHours))

	if app.cfg.NotifyMilestones {
		notify.Milestones(ctx, notifier,
			stats.Completion(before, user.TargetHours), stats.Completion(after, user.TargetHours),
			after, user.TargetHours)
	}
	return nil
}

// knownCategory trims c and checks it against model.Categories.
func knownCategory(c string) (string, error) {
	c = strings.TrimSpace(c)
	if !model.IsKnownCategory(c) {
		return "", fmt.Errorf("%w: unknown category %q (choose one of: %s)",
			model.ErrInvalidEntry, c, strings.Join(model.Categories, ", "))
	}
	return c, nil
}

// buildEntry validates user input into a new manual entry dated no later
// than now.
func buildEntry(date, start, end, task, category, notes string, now time.Time) (model.TimeEntry, error) {
	entry, err := model.NewTimeEntry(date, start, end, task, category, notes, timecalc.ComputeDuration)
	if err != nil {
		return model.TimeEntry{}, err
	}
	// Dates compare lexically in YYYY-MM-DD form.
	if entry.Date > now.Format(model.DateLayout) {
		return model.TimeEntry{}, fmt.Errorf("%w: date %s is in the future", model.ErrInvalidEntry, entry.Date)
	}
	return entry, nil
}
