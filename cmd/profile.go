package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

var (
	profileName       string
	profilePosition   string
	profileDepartment string
	profileSupervisor string
	profileTarget     float64
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the trainee profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the trainee profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update the trainee profile",
	Long: `Create or update the trainee profile. On first use every field is
required; afterwards only the flags given are changed.`,
	Args: cobra.NoArgs,
	RunE: runProfileSet,
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profileName, "name", "", "Full name")
	f.StringVar(&profilePosition, "position", "", "Position or role")
	f.StringVar(&profileDepartment, "department", "", "Department")
	f.StringVar(&profileSupervisor, "supervisor", "", "Supervisor's name")
	f.Float64Var(&profileTarget, "target", 0, "Required OJT hours")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	u := s.LoadUser(ctx)
	if u == nil {
		printOnboardingHint(cmd.OutOrStdout())
		return nil
	}
	printProfile(cmd.OutOrStdout(), *u)
	return nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var u model.User
	if existing := s.LoadUser(ctx); existing != nil {
		u = *existing
	}
	flags := cmd.Flags()
	if flags.Changed("name") {
		u.Name = profileName
	}
	if flags.Changed("position") {
		u.Position = profilePosition
	}
	if flags.Changed("department") {
		u.Department = profileDepartment
	}
	if flags.Changed("supervisor") {
		u.Supervisor = profileSupervisor
	}
	if flags.Changed("target") {
		u.TargetHours = profileTarget
	}

	saved, err := s.UpsertProfile(ctx, u)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Profile saved.")
	printProfile(cmd.OutOrStdout(), saved)
	return nil
}

func printProfile(w io.Writer, u model.User) {
	fmt.Fprintf(w, "Name:         %s\n", u.Name)
	fmt.Fprintf(w, "Position:     %s\n", u.Position)
	fmt.Fprintf(w, "Department:   %s\n", u.Department)
	fmt.Fprintf(w, "Supervisor:   %s\n", u.Supervisor)
	fmt.Fprintf(w, "Target hours: %s\n", timecalc.FormatHours(u.TargetHours))
}

func printOnboardingHint(w io.Writer) {
	fmt.Fprintln(w, "No profile yet. Create one with:")
	fmt.Fprintln(w, `  ojt profile set --name "Your Name" --position Intern --department IT --supervisor "Supervisor" --target 486`)
}
