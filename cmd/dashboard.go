package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/stats"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

var dashboardFrame string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show progress toward the OJT target and hours per category",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardFrame, "frame", "all", "Time frame for the category breakdown: day, week, month, all")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	frame, err := model.ParseTimeFrame(dashboardFrame)
	if err != nil {
		return err
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	user := s.LoadUser(ctx)
	if user == nil {
		printOnboardingHint(out)
		fmt.Fprintln(out)
	}

	entries := s.LoadEntries(ctx)
	printDashboard(out, user, stats.Dashboard(entries, user, app.now))
	fmt.Fprintln(out)
	printBreakdown(out, frame, stats.HoursByCategory(entries, frame, app.now))
	return nil
}

const progressWidth = 30

// progressBar renders pct (0-100) as a fixed-width bar.
func progressBar(pct float64) string {
	filled := int(pct / 100 * progressWidth)
	filled = max(0, min(progressWidth, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled) + "]"
}

func printDashboard(w io.Writer, user *model.User, d model.DashboardStats) {
	if user != nil {
		fmt.Fprintf(w, "%s – %s, %s\n", user.Name, user.Position, user.Department)
		fmt.Fprintf(w, "Total:      %s / %s hours\n", timecalc.FormatHours(d.TotalHours), timecalc.FormatHours(user.TargetHours))
		fmt.Fprintf(w, "Completion: %s %.0f%%\n", progressBar(d.CompletionPercentage), d.CompletionPercentage)
		if remaining := user.TargetHours - d.TotalHours; remaining > 0 {
			fmt.Fprintf(w, "Remaining:  %s hours\n", timecalc.FormatHours(remaining))
		}
	} else {
		fmt.Fprintf(w, "Total:      %s hours\n", timecalc.FormatHours(d.TotalHours))
	}
	fmt.Fprintf(w, "This week:  %s hours\n", timecalc.FormatHours(d.WeeklyHours))
	fmt.Fprintf(w, "This month: %s hours\n", timecalc.FormatHours(d.MonthlyHours))
}

// printBreakdown prints the category table, largest first.
func printBreakdown(w io.Writer, frame model.TimeFrame, summaries []model.CategorySummary) {
	fmt.Fprintf(w, "Hours by category (%s)\n", frame)
	fmt.Fprintln(w, "------------------------------------------")
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No entries in this time frame.")
		return
	}
	sorted := append([]model.CategorySummary(nil), summaries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Hours > sorted[j].Hours })

	var total float64
	for _, c := range sorted {
		fmt.Fprintf(w, "%-20s%8s h %6.1f%%\n", c.Category, timecalc.FormatHours(c.Hours), c.Percentage)
		total += c.Hours
	}
	fmt.Fprintln(w, "------------------------------------------")
	fmt.Fprintf(w, "%-20s%8s h\n", "Total", timecalc.FormatHours(total))
}
