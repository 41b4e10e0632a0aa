package internal

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_more.sql": {Data: []byte("SELECT 2;")},
		"migrations/001_init.sql": {Data: []byte("SELECT 1;")},
		"migrations/README.md":    {Data: []byte("notes")},
	}

	files, err := MigrationFiles(fsys, "migrations")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_more.sql"}, files)
}

func TestMigrationFilesMissingDir(t *testing.T) {
	_, err := MigrationFiles(fstest.MapFS{}, "migrations")
	assert.Error(t, err)
}
