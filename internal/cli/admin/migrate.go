package admin

import (
	"errors"
	"fmt"

	"github.com/cloo-solutions/lexcorpus/internal/config"
	"github.com/cloo-solutions/lexcorpus/internal/database"
	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  "Apply, roll back, or inspect the schema migrations of the chunk index database",
	}

	cmd.PersistentFlags().String("migrations", database.DefaultMigrationsDir, "Directory with SQL migrations")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, dir, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			return database.RunMigrations(dbURL, dir)
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, dir, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("steps")
			return database.RollbackMigrations(dbURL, dir, steps)
		},
	}
	down.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, dir, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			version, dirty, err := database.MigrationVersion(dbURL, dir)
			if err != nil {
				return err
			}
			if dirty {
				fmt.Fprintf(cmd.OutOrStdout(), "%d (dirty)\n", version)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	})

	return cmd
}

func migrationTarget(cmd *cobra.Command) (string, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", "", fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasDatabase() {
		return "", "", errors.New("LEXCORPUS_DATABASE_URL is not set")
	}
	dir, _ := cmd.Flags().GetString("migrations")
	return cfg.DatabaseURL, dir, nil
}
