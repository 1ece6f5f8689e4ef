package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitstarkbridge/aframp-backend/db"
	"github.com/bitstarkbridge/aframp-backend/db/dbtest"
)

func getCoreMigrationsApplied(t *testing.T, ctx context.Context, dbConn db.DBConnectionPool) []string {
	t.Helper()

	rows, err := dbConn.QueryContext(ctx, "SELECT id FROM core_migrations")
	require.NoError(t, err)
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())

	return ids
}

func Test_DatabaseCommand_db_help(t *testing.T) {
	buf := new(strings.Builder)

	rootCmd := SetupCLI("x.y.z", "1234567890abcdef")
	rootCmd.SetArgs([]string{"db"})
	rootCmd.SetOut(buf)
	err := rootCmd.Execute()
	require.NoError(t, err)

	expectedContains := []string{
		"Database related commands",
		"aframp-backend db [flags]",
		"aframp-backend db [command]",
		"migrate     Schema migration helpers",
		"-h, --help   help for db",
	}

	output := buf.String()
	for _, expected := range expectedContains {
		assert.Contains(t, output, expected)
	}
}

func Test_DatabaseCommand_db_migrate(t *testing.T) {
	dbt := dbtest.OpenWithoutMigrations(t)
	defer dbt.Close()

	dbConnectionPool, err := db.OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)
	defer dbConnectionPool.Close()

	ctx := context.Background()

	t.Run("migrate usage", func(t *testing.T) {
		buf := new(strings.Builder)
		rootCmd := SetupCLI("x.y.z", "1234567890abcdef")
		rootCmd.SetArgs([]string{"db", "migrate"})
		rootCmd.SetOut(buf)
		err = rootCmd.Execute()
		require.NoError(t, err)

		expectedContains := []string{
			"Schema migration helpers",
			"aframp-backend db migrate [flags]",
			"aframp-backend db migrate [command]",
			"down [count]   Migrates the database down [count] migrations",
			"up [count]     Migrates the database up [count] migrations",
		}

		output := buf.String()
		for _, expected := range expectedContains {
			assert.Contains(t, output, expected)
		}
	})

	t.Run("migrate up and down", func(t *testing.T) {
		rootCmd := SetupCLI("x.y.z", "1234567890abcdef")
		rootCmd.SetArgs([]string{"db", "migrate", "up", "--database-url", dbt.DSN})
		require.NoError(t, rootCmd.Execute())

		ids := getCoreMigrationsApplied(t, ctx, dbConnectionPool)
		assert.Equal(t, []string{
			"0001_create_transactions_table.sql",
			"0002_create_webhook_events_table.sql",
		}, ids)

		rootCmd = SetupCLI("x.y.z", "1234567890abcdef")
		rootCmd.SetArgs([]string{"db", "migrate", "down", "2", "--database-url", dbt.DSN})
		require.NoError(t, rootCmd.Execute())

		ids = getCoreMigrationsApplied(t, ctx, dbConnectionPool)
		assert.Equal(t, []string{}, ids)
	})
}
