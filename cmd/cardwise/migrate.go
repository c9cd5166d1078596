package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cardwise/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on start, so this is mostly useful to
create an empty database or to check its version with --status.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath := cfg.Database.Path

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if status {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "📊 Database: %s\n", dbPath)
		fmt.Fprintf(out, "   Current version: %d\n", current)
		fmt.Fprintf(out, "   Latest version:  %d\n", storage.ExpectedSchemaVersion)
		if current < storage.ExpectedSchemaVersion {
			fmt.Fprintln(out, "   Run 'cardwise migrate' to upgrade.")
		}
		return nil
	}

	slog.Info("🗄️  Running database migrations...", "database", dbPath, "from_version", current)

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("✅ Database migrations completed successfully!", "version", storage.ExpectedSchemaVersion)
	return nil
}
