package database

import (
	"context"
	"embed"

	"github.com/teammachinist/tiendaqr/internal"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// NewDatabase connects and creates the files table on first start.
func NewDatabase(ctx context.Context, databaseURL string) (*internal.DB, error) {
	return internal.NewDatabase(ctx, databaseURL, &internal.Migrations{
		FS:          migrationFS,
		Dir:         "migrations",
		MarkerTable: "files",
	})
}

func MigrationFiles() ([]string, error) {
	return internal.MigrationFiles(migrationFS, "migrations")
}
