package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/msgraph"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

var (
	outlookSyncFrom     string
	outlookSyncTo       string
	outlookSyncDate     string
	outlookSyncDryRun   bool
	outlookSyncCategory string
	outlookSyncTZ       string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import Outlook calendar events as time entries",
	Args:  cobra.NoArgs,
	RunE:  runOutlookSync,
}

func init() {
	outlookSyncCmd.Flags().StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().StringVar(&outlookSyncDate, "date", "", "Sync a specific date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned operations without writing")
	outlookSyncCmd.Flags().StringVar(&outlookSyncCategory, "category", "", "Category for imported events (default from config)")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default from config, then local)")
	outlookCmd.AddCommand(outlookSyncCmd)
}

// syncWindow resolves the --date / --from / --to flags into [from, to] in loc.
func syncWindow(date, fromStr, toStr string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	now = now.In(loc)
	switch {
	case date != "":
		d, err := timecalc.ParseDate(date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date value %q: %w", date, err)
		}
		return timecalc.StartOfDay(d), timecalc.EndOfDay(d), nil

	case fromStr != "" || toStr != "":
		if fromStr == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		from, err := timecalc.ParseDate(fromStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value %q: %w", fromStr, err)
		}
		to := now
		if toStr != "" {
			to, err = timecalc.ParseDate(toStr, loc)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value %q: %w", toStr, err)
			}
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", to.Format(model.DateLayout), fromStr)
		}
		return timecalc.StartOfDay(from), timecalc.EndOfDay(to), nil
	}
	return timecalc.StartOfDay(now), timecalc.EndOfDay(now), nil
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ocfg := app.cfg.Outlook

	timezone := outlookSyncTZ
	if timezone == "" {
		timezone = ocfg.Timezone
	}
	loc := time.Local
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
		loc = l
	}
	category := outlookSyncCategory
	if category == "" {
		category = ocfg.DefaultCategory
	}

	from, to, err := syncWindow(outlookSyncDate, outlookSyncFrom, outlookSyncTo, app.now, loc)
	if err != nil {
		return err
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(out, "Syncing Outlook events (%s → %s)%s...\n",
		from.Format(model.DateLayout), to.Format(model.DateLayout), dryTag)
	fmt.Fprintln(out)

	cache, err := msgraph.DefaultTokenCache()
	if err != nil {
		return err
	}
	oauthCfg := msgraph.OAuth2Config(ocfg.TenantID, ocfg.ClientID)
	tok, err := msgraph.Authenticate(ctx, oauthCfg, cache, out)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	client := msgraph.NewClient(ctx, tok, oauthCfg, cache)

	preferZone, graphLoc := msgraph.PreferZone(loc)
	events, err := client.GetCalendarView(ctx, from, to, preferZone)
	if err != nil {
		return fmt.Errorf("failed to fetch calendar events: %w", err)
	}

	result, err := msgraph.SyncEvents(ctx, s, events, msgraph.SyncOptions{
		DryRun:    outlookSyncDryRun,
		Category:  category,
		Location:  loc,
		GraphZone: graphLoc,
	})
	if err != nil {
		return err
	}
	printSyncResult(out, result)
	if result.Errors > 0 {
		return fmt.Errorf("%d events could not be imported", result.Errors)
	}
	return nil
}

func printSyncResult(w io.Writer, result msgraph.SyncResult) {
	for _, o := range result.Outcomes {
		switch o.Action {
		case msgraph.ActionImported:
			fmt.Fprintf(w, "  ✓ Imported: %s (%s)\n", o.Subject, timecalc.FormatDuration(o.Entry.Duration))
		case msgraph.ActionUpdated:
			fmt.Fprintf(w, "  ↑ Updated:  %s (%s)\n", o.Subject, timecalc.FormatDuration(o.Entry.Duration))
		case msgraph.ActionSkipped:
			fmt.Fprintf(w, "  – Skipped:  %s (already exists)\n", o.Subject)
		case msgraph.ActionIgnored:
			fmt.Fprintf(w, "  · Ignored:  %s (%s)\n", o.Subject, o.Reason)
		case msgraph.ActionError:
			fmt.Fprintf(w, "  ! Error:    %s: %s\n", o.Subject, o.Reason)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d imported\n", result.Imported)
	fmt.Fprintf(w, "  %d skipped\n", result.Skipped)
	fmt.Fprintf(w, "  %d updated\n", result.Updated)
	fmt.Fprintf(w, "  %d ignored\n", result.Ignored)
	if result.Errors > 0 {
		fmt.Fprintf(w, "  %d errors\n", result.Errors)
	}
}
