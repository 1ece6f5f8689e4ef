package db

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/bitstarkbridge/aframp-backend/internal/utils"
)

type MigrationTableName string

const (
	// NOTE: this name is hardcoded in the dbtest package and must stay in sync if updated.
	CoreMigrationsTableName MigrationTableName = "core_migrations"
)

func Migrate(dbURL string, dir migrate.MigrationDirection, count int, migrationFiles fs.FS, tableName MigrationTableName) (int, error) {
	dbConnectionPool, err := OpenDBConnectionPool(dbURL)
	if err != nil {
		return 0, fmt.Errorf("database URL '%s': %w", utils.TruncateString(dbURL, len(dbURL)/4), err)
	}
	defer dbConnectionPool.Close()

	ms := migrate.MigrationSet{
		TableName: string(tableName),
	}

	m := migrate.HttpFileSystemMigrationSource{FileSystem: http.FS(migrationFiles)}
	ctx := context.Background()
	db, err := dbConnectionPool.SqlDB(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching sql.DB: %w", err)
	}
	return ms.ExecMax(db, dbConnectionPool.DriverName(), m, dir, count)
}
