package postgres

import (
	"embed"

	pgpkg "github.com/Emmyme/hids-cli/pkg/postgres"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies the verdict schema migrations and returns the schema version.
func Migrate(dsn string) (uint, error) {
	return pgpkg.RunMigrations(dsn, migrationFiles, "migrations")
}
