package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/stats"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

var (
	listFrame    string
	listSearch   string
	listCategory string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listFrame, "frame", "all", "Time frame: day, week, month, all")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Only entries whose task or notes contain this text")
	listCmd.Flags().StringVar(&listCategory, "category", stats.AllCategories, "Only entries in this category")
}

// entryQuery builds the filter from the shared frame flag value.
func entryQuery(frame, search, category string) (stats.Query, error) {
	tf, err := model.ParseTimeFrame(frame)
	if err != nil {
		return stats.Query{}, err
	}
	return stats.Query{Frame: tf, Search: search, Category: category}, nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	q, err := entryQuery(listFrame, listSearch, listCategory)
	if err != nil {
		return err
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	entries := stats.Apply(s.LoadEntries(ctx), q, app.now)
	printList(cmd.OutOrStdout(), stats.SortForDisplay(entries))
	return nil
}

// printList groups entries by date and prints them.
func printList(w io.Writer, entries []model.TimeEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	var currentDay string
	for _, e := range entries {
		if e.Date != currentDay {
			fmt.Fprintln(w, e.Date)
			currentDay = e.Date
		}
		fmt.Fprintf(w, "  %s–%s  %-8s %s  [%s]  %s\n",
			e.StartTime, e.EndTime, timecalc.FormatDuration(e.Duration), e.Task, e.Category, e.ID)
		if e.Notes != "" {
			for _, line := range strings.Split(e.Notes, "\n") {
				fmt.Fprintf(w, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(w, "\n%d entries, %s hours\n", len(entries), timecalc.FormatHours(stats.TotalHours(entries)))
}
