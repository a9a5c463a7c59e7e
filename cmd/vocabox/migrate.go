package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/vocabox/internal/database"
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema commands",
	}

	migrateCmd.AddCommand(
		newMigrateDirectionCommand(database.MigrateUp, "Apply all pending migrations"),
		newMigrateDirectionCommand(database.MigrateDown, "Revert all migrations"),
	)
	return migrateCmd
}

func newMigrateDirectionCommand(direction database.MigrationDirection, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			if err := database.Migrate(db, direction); err != nil {
				return errors.Join(fmt.Errorf("database.Migrate(%s) > %w", direction, err), db.Close())
			}
			return db.Close()
		},
	}
}
