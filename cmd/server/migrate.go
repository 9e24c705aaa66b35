package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HammerMeetNail/butterfly/internal/database"
	"github.com/HammerMeetNail/butterfly/migrations"
)

func newMigrateCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(fn func(m *database.Migrator, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			m, err := database.NewMigrator(cfg.Database.DSN(), migrations.FS)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()
			return fn(m, cmd)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: run(func(m *database.Migrator, cmd *cobra.Command) error {
				return m.Up()
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: run(func(m *database.Migrator, cmd *cobra.Command) error {
				return m.Down()
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: run(func(m *database.Migrator, cmd *cobra.Command) error {
				v, dirty, err := m.Version()
				if err != nil {
					return fmt.Errorf("reading version: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
				return nil
			}),
		},
	)
	return cmd
}
