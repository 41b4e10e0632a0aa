package database

import (
	"context"
	"embed"

	"github.com/teammachinist/tiendaqr/internal"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type (
	DBTX = internal.DBTX
	TxDB = internal.TxDB
)

// NewDatabase connects and creates the storefront schema on first start.
func NewDatabase(ctx context.Context, databaseURL string) (*internal.DB, error) {
	return internal.NewDatabase(ctx, databaseURL, &internal.Migrations{
		FS:          migrationFS,
		Dir:         "migrations",
		MarkerTable: "profiles",
	})
}

// MigrationFiles returns the embedded migration names in apply order.
func MigrationFiles() ([]string, error) {
	return internal.MigrationFiles(migrationFS, "migrations")
}
