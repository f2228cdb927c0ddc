package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/storage"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

var deleteYes bool

// stdinIsTerminal reports whether confirmation can be asked interactively.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var errNotConfirmed = errors.New("stdin is not a terminal; pass --yes to delete without confirmation")

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a time entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var target *model.TimeEntry
	for _, e := range s.LoadEntries(ctx) {
		if e.ID == id {
			target = &e
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s", storage.ErrEntryNotFound, id)
	}

	if !deleteYes {
		if !stdinIsTerminal() {
			return errNotConfirmed
		}
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf(
			"Delete %s %s–%s %q (%s)? [y/N] ",
			target.Date, target.StartTime, target.EndTime, target.Task, timecalc.FormatDuration(target.Duration)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	if err := s.DeleteEntry(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s.\n", id)
	return nil
}

// confirm prints prompt and reads a yes/no answer. Anything but y or yes is no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
