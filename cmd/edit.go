package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/storage"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

var (
	editDate     string
	editStart    string
	editEnd      string
	editTask     string
	editCategory string
	editNotes    string
)

// editFields are the flags that change an entry.
var editFields = []string{"date", "start", "end", "task", "category", "notes"}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a time entry",
	Long: `Edit a time entry. Only the fields given as flags change; the entry keeps
its id. Entries imported from Outlook are overwritten again by a later sync
if the event itself changed.`,
	Example: `  ojt edit 3f2a... --end 12:00
  ojt edit 3f2a... --category Training --notes ""`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	f := editCmd.Flags()
	f.StringVar(&editDate, "date", "", "Date of the activity (YYYY-MM-DD)")
	f.StringVar(&editStart, "start", "", "Start time (HH:MM, 24h)")
	f.StringVar(&editEnd, "end", "", "End time (HH:MM, 24h)")
	f.StringVar(&editTask, "task", "", "What you worked on")
	f.StringVar(&editCategory, "category", "", "Category: "+strings.Join(model.Categories, ", "))
	f.StringVar(&editNotes, "notes", "", "Notes")
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	flags := cmd.Flags()
	changed := false
	for _, name := range editFields {
		changed = changed || flags.Changed(name)
	}
	if !changed {
		return fmt.Errorf("%w: nothing to change (pass at least one of --%s)",
			model.ErrInvalidEntry, strings.Join(editFields, ", --"))
	}
	category := editCategory
	if flags.Changed("category") {
		c, err := knownCategory(editCategory)
		if err != nil {
			return err
		}
		category = c
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var current *model.TimeEntry
	for _, e := range s.LoadEntries(ctx) {
		if e.ID == id {
			current = &e
			break
		}
	}
	if current == nil {
		return fmt.Errorf("%w: %s", storage.ErrEntryNotFound, id)
	}

	pick := func(name, value, old string) string {
		if flags.Changed(name) {
			return value
		}
		return old
	}
	entry, err := buildEntry(
		pick("date", editDate, current.Date),
		pick("start", editStart, current.StartTime),
		pick("end", editEnd, current.EndTime),
		pick("task", editTask, current.Task),
		pick("category", category, current.Category),
		pick("notes", editNotes, current.Notes),
		app.now)
	if err != nil {
		return err
	}
	entry.ID = current.ID
	entry.Source = current.Source
	entry.ExternalID = current.ExternalID

	if err := s.UpdateEntry(ctx, entry); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s %s–%s %s [%s] (%s)\n",
		entry.ID, entry.Date, entry.StartTime, entry.EndTime, entry.Task, entry.Category,
		timecalc.FormatDuration(entry.Duration))
	return nil
}
