package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/stats"
)

var categoriesUsed bool

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the activity categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().BoolVar(&categoriesUsed, "used", false, "List the categories present in logged entries instead")
}

func runCategories(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if !categoriesUsed {
		for _, c := range model.Categories {
			fmt.Fprintln(out, c)
		}
		return nil
	}

	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, c := range stats.DistinctCategories(s.LoadEntries(ctx)) {
		fmt.Fprintln(out, c)
	}
	return nil
}
