package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/killallgit/transcribe-api/internal/database"
	"github.com/killallgit/transcribe-api/pkg/config"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage the database schema of the Transcribe API.

The schema follows the application models. Migrations only add tables,
columns and indexes; they never drop data.

Available subcommands:
  up      - Bring the schema up to date
  status  - Show which tables exist`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Bring the schema up to date",
	Long: `Apply all pending database migrations.

Missing tables, columns and indexes of the audio_files and transcriptions
tables are created.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long: `Display the current status of the database schema.

Each application table is listed with whether it exists.`,
	RunE: runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateCmd.PersistentFlags().Bool("dry-run", false, "show what would be done without making changes")
}

func openDatabase() (*database.DB, error) {
	path := config.GetString("database.path")
	if path == "" {
		return nil, fmt.Errorf("database path is not configured")
	}
	return database.Initialize(path, config.GetBool("database.verbose"))
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintln(out, "Dry run mode - no changes will be made")
		printTableStatus(cmd, db.TableStatus())
		return nil
	}

	if err := db.Migrate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database %s is up to date\n", config.GetString("database.path"))
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	printTableStatus(cmd, db.TableStatus())
	return nil
}

func printTableStatus(cmd *cobra.Command, status map[string]bool) {
	tables := make([]string, 0, len(status))
	for table := range status {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Database Migration Status")
	for _, table := range tables {
		state := "pending"
		if status[table] {
			state = "applied"
		}
		fmt.Fprintf(out, "  %-20s %s\n", table, state)
	}
}
