package dbtest

import (
	"net/http"
	"testing"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/stellar/go/support/db/dbtest"

	"github.com/bitstarkbridge/aframp-backend/db/migrations"
)

func OpenWithoutMigrations(t *testing.T) *dbtest.DB {
	return dbtest.Postgres(t)
}

// Open spins up a throwaway Postgres database and applies the core migrations
// (transactions + webhook_events) against it.
func Open(t *testing.T) *dbtest.DB {
	db := OpenWithoutMigrations(t)

	conn := db.Open()
	defer conn.Close()

	ms := migrate.MigrationSet{TableName: "core_migrations"}
	m := migrate.HttpFileSystemMigrationSource{FileSystem: http.FS(migrations.FS)}
	_, err := ms.ExecMax(conn.DB, "postgres", m, migrate.Up, 0)
	if err != nil {
		t.Fatal(err)
	}

	return db
}
