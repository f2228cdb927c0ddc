package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/storage"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type fakeNotifier struct{ titles []string }

func (f *fakeNotifier) Notify(title, _ string) error {
	f.titles = append(f.titles, title)
	return nil
}

// testEnv points ojt at a temporary data directory.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("OJT_BACKEND", "file")
	t.Setenv("OJT_DATA_DIR", dir)
	t.Setenv("OJT_LOG_LEVEL", "error")
	return dir
}

// run executes ojt with args at a fixed reference instant.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.json"),
		"--now", "2024-01-17T12:00:00Z",
	}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setProfile(t *testing.T, dir string, target string) {
	t.Helper()
	out, err := run(t, dir, "", "profile", "set",
		"--name", "Ana Cruz", "--position", "IT Intern", "--department", "IT",
		"--supervisor", "Bo Reyes", "--target", target)
	require.NoError(t, err)
	require.Contains(t, out, "Profile saved.")
}

func TestDashboardWithoutProfile(t *testing.T) {
	dir := testEnv(t)
	out, err := run(t, dir, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "No profile yet")
	assert.Contains(t, out, "Total:      0.0 hours")
	assert.Contains(t, out, "No entries in this time frame.")
}

func TestProfileSetAndShow(t *testing.T) {
	dir := testEnv(t)
	setProfile(t, dir, "486")

	out, err := run(t, dir, "", "profile", "set", "--target", "500")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:         Ana Cruz")

	out, err = run(t, dir, "", "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Target hours: 500.0")
}

func TestProfileSetRejectsIncompleteProfile(t *testing.T) {
	dir := testEnv(t)
	_, err := run(t, dir, "", "profile", "set", "--name", "Ana Cruz")
	assert.ErrorIs(t, err, model.ErrInvalidProfile)
	assert.Equal(t, 1, exitCode(err))
}

func TestLogListDashboardDelete(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("OJT_NOTIFY", "true")
	fake := &fakeNotifier{}
	orig := notifier
	notifier = fake
	t.Cleanup(func() { notifier = orig })

	setProfile(t, dir, "10")

	out, err := run(t, dir, "", "log", "--date", "2024-01-15", "--start", "09:00", "--end", "11:30",
		"--task", "Configured staging server", "--category", "Technical Skills")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 2h 30m on 2024-01-15")
	assert.Contains(t, out, "Progress: 2.5 / 10.0 hours (25%)")
	assert.Equal(t, []string{"OJT 25% complete"}, fake.titles)

	_, err = run(t, dir, "", "log", "--date", "2024-01-02", "--start", "13:00", "--end", "14:00",
		"--task", "Team standup", "--category", "Meetings", "--notes", "Sprint 4 kickoff")
	require.NoError(t, err)

	out, err = run(t, dir, "", "list", "--search", "STAGING")
	require.NoError(t, err)
	assert.Contains(t, out, "Configured staging server")
	assert.NotContains(t, out, "Team standup")

	out, err = run(t, dir, "", "list", "--frame", "week")
	require.NoError(t, err)
	assert.Contains(t, out, "1 entries, 2.5 hours")

	out, err = run(t, dir, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Total:      3.5 / 10.0 hours")
	assert.Contains(t, out, "This week:  2.5 hours")
	assert.Contains(t, out, "This month: 3.5 hours")
	assert.Contains(t, out, "Technical Skills")

	out, err = run(t, dir, "", "export", "--format", "json", "--category", "Meetings")
	require.NoError(t, err)
	var exported []model.TimeEntry
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	require.Len(t, exported, 1)
	id := exported[0].ID

	out, err = run(t, dir, "", "delete", id, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Deleted entry %s.", id))

	_, err = run(t, dir, "", "delete", id, "--yes")
	assert.ErrorIs(t, err, storage.ErrEntryNotFound)

	out, err = run(t, dir, "", "categories", "--used")
	require.NoError(t, err)
	assert.Equal(t, "Technical Skills\n", out)
}

func TestLogRejectsInvalidInput(t *testing.T) {
	dir := testEnv(t)
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"future date", []string{"--date", "2024-01-18", "--start", "09:00", "--end", "10:00", "--task", "Tomorrow", "--category", "Other"}, model.ErrInvalidEntry},
		{"unknown category", []string{"--start", "09:00", "--end", "10:00", "--task", "Something", "--category", "Gaming"}, model.ErrInvalidEntry},
		{"short task", []string{"--start", "09:00", "--end", "10:00", "--task", "ab", "--category", "Other"}, model.ErrInvalidEntry},
		{"end before start", []string{"--start", "10:00", "--end", "09:00", "--task", "Backwards", "--category", "Other"}, timecalc.ErrInvalidRange},
		{"bad clock", []string{"--start", "9am", "--end", "10:00", "--task", "Sloppy", "--category", "Other"}, timecalc.ErrInvalidTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dir, "", append([]string{"log"}, tt.args...)...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	out, err := run(t, dir, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries found.")
}

func TestLogTrimsCategory(t *testing.T) {
	dir := testEnv(t)

	out, err := run(t, dir, "", "log", "--start", "09:00", "--end", "10:00",
		"--task", "Security awareness module", "--category", " Training ")
	require.NoError(t, err)
	assert.Contains(t, out, "[Training]")

	entries := exportedEntries(t, dir)
	require.Len(t, entries, 1)
	assert.Equal(t, "Training", entries[0].Category)
}

// exportedEntries returns every stored entry via the JSON export.
func exportedEntries(t *testing.T, dir string) []model.TimeEntry {
	t.Helper()
	out, err := run(t, dir, "", "export", "--format", "json")
	require.NoError(t, err)
	var entries []model.TimeEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	return entries
}

func TestEditEntry(t *testing.T) {
	dir := testEnv(t)
	_, err := run(t, dir, "", "log", "--date", "2024-01-15", "--start", "09:00", "--end", "10:00",
		"--task", "Configured staging server", "--category", "Technical Skills", "--notes", "first pass")
	require.NoError(t, err)
	before := exportedEntries(t, dir)
	require.Len(t, before, 1)
	id := before[0].ID

	out, err := run(t, dir, "", "edit", id, "--end", "11:30", "--category", "Research ")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated "+id)
	assert.Contains(t, out, "(1h 30m)")

	after := exportedEntries(t, dir)
	require.Len(t, after, 1)
	got := after[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "2024-01-15", got.Date)
	assert.Equal(t, "09:00", got.StartTime)
	assert.Equal(t, "11:30", got.EndTime)
	assert.Equal(t, 90, got.Duration)
	assert.Equal(t, "Configured staging server", got.Task)
	assert.Equal(t, "Research", got.Category)
	assert.Equal(t, "first pass", got.Notes)
	assert.Equal(t, model.SourceManual, got.Source)

	_, err = run(t, dir, "", "edit", id, "--notes", "")
	require.NoError(t, err)
	assert.Empty(t, exportedEntries(t, dir)[0].Notes)
}

func TestEditRejectsInvalidInput(t *testing.T) {
	dir := testEnv(t)
	_, err := run(t, dir, "", "log", "--date", "2024-01-15", "--start", "09:00", "--end", "10:00",
		"--task", "Team standup", "--category", "Meetings")
	require.NoError(t, err)
	original := exportedEntries(t, dir)
	require.Len(t, original, 1)
	id := original[0].ID

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"no changes", []string{id}, model.ErrInvalidEntry},
		{"unknown id", []string{"missing", "--task", "Anything"}, storage.ErrEntryNotFound},
		{"future date", []string{id, "--date", "2024-01-18"}, model.ErrInvalidEntry},
		{"unknown category", []string{id, "--category", "Gaming"}, model.ErrInvalidEntry},
		{"end before start", []string{id, "--end", "08:00"}, timecalc.ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dir, "", append([]string{"edit"}, tt.args...)...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, original, exportedEntries(t, dir), "failed edits leave the entry untouched")
}

func TestDeleteConfirmation(t *testing.T) {
	dir := testEnv(t)
	_, err := run(t, dir, "", "log", "--date", "2024-01-15", "--start", "09:00", "--end", "10:00",
		"--task", "Read handbook", "--category", "Training")
	require.NoError(t, err)
	out, err := run(t, dir, "", "export", "--format", "json")
	require.NoError(t, err)
	var entries []model.TimeEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	id := entries[0].ID

	orig := stdinIsTerminal
	t.Cleanup(func() { stdinIsTerminal = orig })

	stdinIsTerminal = func() bool { return false }
	_, err = run(t, dir, "", "delete", id)
	assert.ErrorIs(t, err, errNotConfirmed)

	stdinIsTerminal = func() bool { return true }
	out, err = run(t, dir, "n\n", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	out, err = run(t, dir, "y\n", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted entry")
}

func TestInvalidFrame(t *testing.T) {
	dir := testEnv(t)
	_, err := run(t, dir, "", "list", "--frame", "year")
	assert.ErrorContains(t, err, "unknown time frame")
}

func TestReferenceTime(t *testing.T) {
	fallback := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := referenceTime("", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)

	got, err = referenceTime("2024-01-17T12:00:00+08:00", fallback)
	require.NoError(t, err)
	assert.Equal(t, 17, got.Day())

	_, err = referenceTime("yesterday", fallback)
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(fmt.Errorf("%w: disk full", storage.ErrStoreUnavailable)))
	assert.Equal(t, 1, exitCode(model.ErrInvalidEntry))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "["+strings.Repeat(".", progressWidth)+"]", progressBar(0))
	assert.Equal(t, "["+strings.Repeat("#", progressWidth)+"]", progressBar(100))
	assert.Equal(t, "["+strings.Repeat("#", 15)+strings.Repeat(".", 15)+"]", progressBar(50))
}

func TestSyncWindow(t *testing.T) {
	now := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

	from, to, err := syncWindow("", "", "", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-17", from.Format(model.DateLayout))
	assert.Equal(t, "2024-01-17", to.Format(model.DateLayout))

	from, to, err = syncWindow("", "2024-01-10", "", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", from.Format(model.DateLayout))
	assert.Equal(t, "2024-01-17", to.Format(model.DateLayout))

	_, _, err = syncWindow("", "", "2024-01-10", now, time.UTC)
	assert.Error(t, err)

	_, _, err = syncWindow("", "2024-01-10", "2024-01-05", now, time.UTC)
	assert.Error(t, err)
}
