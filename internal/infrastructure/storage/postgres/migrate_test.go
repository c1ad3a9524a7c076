package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/db?sslmode=disable": "pgx5://u:p@localhost:5432/db?sslmode=disable",
		"postgresql://localhost/db":                        "pgx5://localhost/db",
		"pgx5://localhost/db":                              "pgx5://localhost/db",
	}
	for in, want := range tests {
		assert.Equal(t, want, MigrateURL(in), in)
	}
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, up := range entries {
		down := up[:len(up)-len(".up.sql")] + ".down.sql"
		_, err := fs.Stat(migrationFS, down)
		assert.NoError(t, err, "missing %s", down)
	}
}
