package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove leftover files and records",
	Long: `Run the maintenance tasks the server performs periodically.

Available subcommands:
  trash    - Delete trashed audio older than cleanup.trash_max_age
  orphans  - Delete audio files that have no transcriptions`,
}

var cleanupTrashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Delete old trashed audio",
	RunE:  runCleanupTrash,
}

var cleanupOrphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Delete audio files without transcriptions",
	RunE:  runCleanupOrphans,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.AddCommand(cleanupTrashCmd)
	cleanupCmd.AddCommand(cleanupOrphansCmd)

	cleanupOrphansCmd.Flags().Duration("min-age", 0, "only delete audio uploaded longer ago than this (default cleanup.orphan_min_age)")
}

func runCleanupTrash(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	app, err := newApplication(logger)
	if err != nil {
		return err
	}
	defer app.Close()

	n, err := app.cleanup.SweepTrash(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d trashed file(s)\n", n)
	return nil
}

func runCleanupOrphans(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	app, err := newApplication(logger)
	if err != nil {
		return err
	}
	defer app.Close()

	minAge, _ := cmd.Flags().GetDuration("min-age")
	if minAge <= 0 {
		minAge = app.cfg.Cleanup.OrphanMinAge
	}
	if minAge <= 0 {
		minAge = 24 * time.Hour
	}

	n, err := app.cleanup.RemoveOrphans(cmd.Context(), minAge)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphaned audio file(s)\n", n)
	return nil
}
