package msgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/ojt-tracker/internal/logging"
	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

// DefaultCategory is used for imported events when none is configured.
const DefaultCategory = "Meetings"

// Action is what a sync run did, or would do, with one event.
type Action string

const (
	ActionImported Action = "imported"
	ActionUpdated  Action = "updated"
	ActionSkipped  Action = "skipped"
	ActionIgnored  Action = "ignored"
	ActionError    Action = "error"
)

// Outcome describes the handling of a single event.
type Outcome struct {
	Action  Action
	Subject string
	// Reason is set for ignored events and errors.
	Reason string
	Entry  model.TimeEntry
}

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Updated  int
	Ignored  int
	Errors   int
	Outcomes []Outcome
}

func (r *SyncResult) record(o Outcome) {
	switch o.Action {
	case ActionImported:
		r.Imported++
	case ActionUpdated:
		r.Updated++
	case ActionSkipped:
		r.Skipped++
	case ActionIgnored:
		r.Ignored++
	case ActionError:
		r.Errors++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Changed reports whether the run adds or modifies any entry.
func (r SyncResult) Changed() bool {
	return r.Imported+r.Updated > 0
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	DryRun   bool
	Category string
	// Location is the zone entry dates and clock times are expressed in.
	// Nil means time.Local.
	Location *time.Location
	// GraphZone is the zone Graph used for zone-less times, i.e. the one
	// requested with PreferZone. Nil means UTC.
	GraphZone *time.Location
}

func (o SyncOptions) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o SyncOptions) graphZone() *time.Location {
	if o.GraphZone == nil {
		return time.UTC
	}
	return o.GraphZone
}

// PreferZone returns the timezone name to send in the Prefer header when
// entries are wanted in loc, and the location Graph's zone-less times must
// then be parsed in. Zones without an IANA name, time.Local included, are
// requested as UTC and converted afterwards.
func PreferZone(loc *time.Location) (string, *time.Location) {
	if loc != nil {
		name := loc.String()
		if name != "" && name != "Local" {
			if l, err := time.LoadLocation(name); err == nil {
				return name, l
			}
		}
	}
	return "UTC", time.UTC
}

func (o SyncOptions) category() string {
	if o.Category == "" {
		return DefaultCategory
	}
	return o.Category
}

// EntryStore is the part of the store a sync run needs.
type EntryStore interface {
	LoadEntries(ctx context.Context) []model.TimeEntry
	ReplaceEntries(ctx context.Context, fn func([]model.TimeEntry) ([]model.TimeEntry, error)) error
}

// parseGraphTime parses a Graph API dateTime string and returns it in loc.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone
// suffix; those are read in graphLoc, the zone the request asked for.
func parseGraphTime(dt string, graphLoc, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, graphLoc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// buildNotes combines bodyPreview and location into the entry notes.
func buildNotes(event CalendarEvent) string {
	parts := []string{}
	if s := strings.TrimSpace(event.BodyPreview); s != "" {
		parts = append(parts, s)
	}
	if event.Location.DisplayName != "" {
		parts = append(parts, event.Location.DisplayName)
	}
	return strings.Join(parts, "\n")
}

// skipReason returns why the event should not be imported, or "".
func skipReason(event CalendarEvent) string {
	switch {
	case event.IsCancelled:
		return "cancelled"
	case event.IsAllDay:
		return "all-day"
	case event.Sensitivity == "private":
		return "private"
	case event.ShowAs == "free":
		return "shown as free"
	case event.Start.DateTime == "" || event.End.DateTime == "":
		return "missing start or end"
	}
	return ""
}

var errNotImportable = errors.New("event cannot be logged as a time entry")

// MapEventToEntry converts a Graph CalendarEvent into a time entry with a
// fresh ID. Zone-less event times are read in graphLoc; the entry is
// expressed in loc. An event ending exactly at the following midnight ends
// at 23:59. Events spanning midnight or shorter than a minute are rejected
// with an error wrapping errNotImportable.
func MapEventToEntry(event CalendarEvent, graphLoc, loc *time.Location, category string) (model.TimeEntry, error) {
	start, err := parseGraphTime(event.Start.DateTime, graphLoc, loc)
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, graphLoc, loc)
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("parsing end time: %w", err)
	}
	if !timecalc.SameDay(start, end) && end.Equal(timecalc.StartOfDay(end)) {
		// HH:MM cannot express 24:00.
		end = end.Add(-time.Minute)
	}
	if !timecalc.SameDay(start, end) {
		return model.TimeEntry{}, fmt.Errorf("%w: spans more than one day", errNotImportable)
	}

	startClock := start.Format(model.ClockLayout)
	endClock := end.Format(model.ClockLayout)
	minutes, err := timecalc.ComputeDuration(startClock, endClock)
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("%w: shorter than one minute", errNotImportable)
	}

	task := strings.TrimSpace(event.Subject)
	if task == "" {
		task = "(no subject)"
	}

	return model.TimeEntry{
		ID:         timecalc.GenerateID(),
		Date:       start.Format(model.DateLayout),
		StartTime:  startClock,
		EndTime:    endClock,
		Duration:   minutes,
		Task:       task,
		Category:   category,
		Notes:      buildNotes(event),
		Source:     model.SourceOutlook,
		ExternalID: event.ID,
	}, nil
}

// findByExternalID returns the index of the entry imported from externalID, or -1.
func findByExternalID(entries []model.TimeEntry, externalID string) int {
	for i := range entries {
		if entries[i].ExternalID == externalID {
			return i
		}
	}
	return -1
}

// sameContent reports whether an imported entry still matches the event.
// ID and category are owned by the trainee once imported.
func sameContent(a, b model.TimeEntry) bool {
	return a.Date == b.Date && a.StartTime == b.StartTime && a.EndTime == b.EndTime &&
		a.Duration == b.Duration && a.Task == b.Task && a.Notes == b.Notes
}

// Plan merges events into entries and returns the resulting list. entries
// is not modified.
func Plan(entries []model.TimeEntry, events []CalendarEvent, opts SyncOptions) ([]model.TimeEntry, SyncResult) {
	var result SyncResult
	merged := append([]model.TimeEntry(nil), entries...)
	loc, graphLoc := opts.location(), opts.graphZone()

	for _, event := range events {
		if reason := skipReason(event); reason != "" {
			result.record(Outcome{Action: ActionIgnored, Subject: event.Subject, Reason: reason})
			continue
		}

		entry, err := MapEventToEntry(event, graphLoc, loc, opts.category())
		if errors.Is(err, errNotImportable) {
			result.record(Outcome{Action: ActionIgnored, Subject: event.Subject, Reason: err.Error()})
			continue
		}
		if err != nil {
			result.record(Outcome{Action: ActionError, Subject: event.Subject, Reason: err.Error()})
			continue
		}

		i := findByExternalID(merged, event.ID)
		if i < 0 {
			merged = append(merged, entry)
			result.record(Outcome{Action: ActionImported, Subject: event.Subject, Entry: entry})
			continue
		}

		if sameContent(merged[i], entry) {
			result.record(Outcome{Action: ActionSkipped, Subject: event.Subject, Entry: merged[i]})
			continue
		}
		// Update: preserve the original ID and category but update the content.
		entry.ID = merged[i].ID
		entry.Category = merged[i].Category
		merged[i] = entry
		result.record(Outcome{Action: ActionUpdated, Subject: event.Subject, Entry: entry})
	}
	return merged, result
}

var errNothingToSave = errors.New("nothing to save")

// SyncEvents merges events into the stored entries. The entry list is
// written once, and only when something changed and opts.DryRun is unset.
func SyncEvents(ctx context.Context, store EntryStore, events []CalendarEvent, opts SyncOptions) (SyncResult, error) {
	log := logging.FromContext(ctx)

	if opts.DryRun {
		_, result := Plan(store.LoadEntries(ctx), events, opts)
		log.Debug("outlook sync planned", "events", len(events), "imported", result.Imported, "updated", result.Updated)
		return result, nil
	}

	var result SyncResult
	err := store.ReplaceEntries(ctx, func(entries []model.TimeEntry) ([]model.TimeEntry, error) {
		var merged []model.TimeEntry
		merged, result = Plan(entries, events, opts)
		if !result.Changed() {
			return nil, errNothingToSave
		}
		return merged, nil
	})
	if err != nil && !errors.Is(err, errNothingToSave) {
		return result, err
	}
	log.Debug("outlook sync finished", "events", len(events), "imported", result.Imported, "updated", result.Updated)
	return result, nil
}
