package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/ojt-tracker/internal/config"
	"github.com/Tiliavir/ojt-tracker/internal/logging"
	"github.com/Tiliavir/ojt-tracker/internal/storage"
)

var (
	configPath string
	nowFlag    string
)

// app holds what the persistent pre-run resolved for the running command.
var app struct {
	cfg config.Config
	now time.Time
}

var rootCmd = &cobra.Command{
	Use:   "ojt",
	Short: "OJT Tracker – log on-the-job training hours",
	Long: `ojt records on-the-job training activities, tracks progress toward the
required hours and summarises time per category.
Data lives in ~/.ojt/ (JSON files by default, or SQLite / Redis).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main. User errors exit with 1,
// storage failures with 2.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, storage.ErrStoreUnavailable) {
		return 2
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.ojt/config.json)")
	rootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "Reference instant for time frames (RFC3339); defaults to the current time")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(outlookCmd)
}

// setup loads configuration, installs the logger and fixes the reference
// instant before any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	cmd.SetContext(logging.AddToContext(ctx, log))

	now, err := referenceTime(nowFlag, time.Now())
	if err != nil {
		return err
	}

	app.cfg = cfg
	app.now = now
	log.Debug("configured", "backend", cfg.Storage.Backend, "now", now.Format(time.RFC3339))
	return nil
}

// referenceTime parses the --now flag. An empty value yields fallback.
func referenceTime(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now value %q (want RFC3339, e.g. 2024-01-17T12:00:00+08:00)", s)
	}
	return t, nil
}

// openStore opens the configured store. Callers must Close it.
func openStore(ctx context.Context) (*storage.Store, error) {
	return storage.Open(ctx, app.cfg.Storage)
}
