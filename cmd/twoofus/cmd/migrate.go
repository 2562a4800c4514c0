package cmd

import (
	"database/sql"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/twoofus/server/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer closeApp(a)

			if err := db.RunMigrations(a.DB.DB, a.Cfg.DBDriver); err != nil {
				return fail("migrate up: %v", err)
			}
			return printVersion(a.DB.DB, a.Cfg.DBDriver)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer closeApp(a)

			if err := db.MigrateDown(a.DB.DB, a.Cfg.DBDriver); err != nil {
				return fail("migrate down: %v", err)
			}
			return printVersion(a.DB.DB, a.Cfg.DBDriver)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer closeApp(a)
			return printVersion(a.DB.DB, a.Cfg.DBDriver)
		},
	})

	return cmd
}

func printVersion(conn *sql.DB, driver string) error {
	version, err := db.MigrationVersion(conn, driver)
	if err != nil {
		return fail("read schema version: %v", err)
	}
	color.Green("✓ Schema at version %d", version)
	return nil
}
