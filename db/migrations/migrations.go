// Package migrations embeds the SQL migration files applied against the
// core schema: transactions, their metadata, and inbound webhook events.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed core-migrations/*.sql
var rawFS embed.FS

// FS is rooted at the migration files themselves (without the
// core-migrations/ path prefix), as expected by sql-migrate's
// HttpFileSystemMigrationSource.
var FS = mustSub(rawFS, "core-migrations")

func mustSub(fsys embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
