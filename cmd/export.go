package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/stats"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

var (
	exportFormat   string
	exportFrame    string
	exportCategory string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export time entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, yaml, md")
	exportCmd.Flags().StringVar(&exportFrame, "frame", "all", "Time frame: day, week, month, all")
	exportCmd.Flags().StringVar(&exportCategory, "category", stats.AllCategories, "Only entries in this category")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	q, err := entryQuery(exportFrame, "", exportCategory)
	if err != nil {
		return err
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	entries := stats.Apply(s.LoadEntries(ctx), q, app.now)
	return writeExport(cmd.OutOrStdout(), exportFormat, entries)
}

// writeExport renders entries in format.
func writeExport(w io.Writer, format string, entries []model.TimeEntry) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("error encoding YAML: %w", err)
		}
		return enc.Close()
	case "md":
		printMarkdown(w, entries)
	case "csv":
		printCSV(w, entries)
	default:
		return fmt.Errorf("unknown export format %q (want csv, json, yaml or md)", format)
	}
	return nil
}

func printCSV(w io.Writer, entries []model.TimeEntry) {
	fmt.Fprintln(w, "id,date,start_time,end_time,duration_minutes,task,category,notes,source")
	for _, e := range entries {
		fmt.Fprintf(w, "%s,%s,%s,%s,%d,%s,%s,%s,%s\n",
			csvEscape(e.ID),
			csvEscape(e.Date),
			csvEscape(e.StartTime),
			csvEscape(e.EndTime),
			e.Duration,
			csvEscape(e.Task),
			csvEscape(e.Category),
			csvEscape(e.Notes),
			csvEscape(e.Source),
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// mdEscape keeps a value inside one Markdown table cell.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

func printMarkdown(w io.Writer, entries []model.TimeEntry) {
	fmt.Fprintln(w, "| Date | Time | Duration | Task | Category | Notes |")
	fmt.Fprintln(w, "|------|------|----------|------|----------|-------|")
	for _, e := range entries {
		fmt.Fprintf(w, "| %s | %s–%s | %s | %s | %s | %s |\n",
			e.Date, e.StartTime, e.EndTime, timecalc.FormatDuration(e.Duration),
			mdEscape(e.Task), mdEscape(e.Category), mdEscape(e.Notes))
	}
	fmt.Fprintf(w, "\n**Total:** %s hours\n", timecalc.FormatHours(stats.TotalHours(entries)))
}
