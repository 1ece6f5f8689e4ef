package cmd

import (
	"fmt"
	"strconv"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
	"github.com/stellar/go/support/log"

	"github.com/bitstarkbridge/aframp-backend/cmd/utils"
	"github.com/bitstarkbridge/aframp-backend/db"
	"github.com/bitstarkbridge/aframp-backend/db/migrations"
)

type DatabaseCommand struct{}

func (c *DatabaseCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:              "db",
		Short:            "Database related commands",
		PersistentPreRun: utils.PropagatePersistentPreRun,
		RunE:             utils.CallHelpCommand,
	}

	cmd.AddCommand(c.migrateCmd())
	return cmd
}

// migrateCmd returns a cobra.Command responsible for running the core schema
// migrations (transactions, webhook_events) tracked in `core_migrations`.
func (c *DatabaseCommand) migrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:              "migrate",
		Short:            "Schema migration helpers",
		PersistentPreRun: utils.PropagatePersistentPreRun,
		RunE:             utils.CallHelpCommand,
	}

	migrateUpCmd := &cobra.Command{
		Use:              "up [count]",
		Short:            "Migrates the database up [count] migrations (0 or omitted applies all pending migrations)",
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRun: utils.PropagatePersistentPreRun,
		Run: func(cmd *cobra.Command, args []string) {
			count := 0
			if len(args) > 0 {
				var err error
				count, err = strconv.Atoi(args[0])
				if err != nil {
					log.Ctx(cmd.Context()).Fatalf("invalid [count] argument: %s", args[0])
				}
			}

			if err := c.applyMigrations(migrate.Up, count); err != nil {
				log.Ctx(cmd.Context()).Fatalf("error executing migrate up: %v", err)
			}
		},
	}

	migrateDownCmd := &cobra.Command{
		Use:              "down [count]",
		Short:            "Migrates the database down [count] migrations",
		Args:             cobra.ExactArgs(1),
		PersistentPreRun: utils.PropagatePersistentPreRun,
		Run: func(cmd *cobra.Command, args []string) {
			count, err := strconv.Atoi(args[0])
			if err != nil {
				log.Ctx(cmd.Context()).Fatalf("invalid [count] argument: %s", args[0])
			}

			if err := c.applyMigrations(migrate.Down, count); err != nil {
				log.Ctx(cmd.Context()).Fatalf("error executing migrate down: %v", err)
			}
		},
	}

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	return migrateCmd
}

func (c *DatabaseCommand) applyMigrations(dir migrate.MigrationDirection, count int) error {
	numMigrationsRun, err := db.Migrate(globalOptions.databaseURL, dir, count, migrations.FS, db.CoreMigrationsTableName)
	if err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	if numMigrationsRun == 0 {
		log.Info("No migrations applied.")
	} else {
		log.Infof("Successfully applied %d migrations %s.", numMigrationsRun, migrationDirectionStr(dir))
	}
	return nil
}

func migrationDirectionStr(dir migrate.MigrationDirection) string {
	if dir == migrate.Up {
		return "up"
	}
	return "down"
}
