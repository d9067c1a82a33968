package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalizeDefaults(t *testing.T) {
	cfg := Config{Host: "db", Name: "jobs", Driver: " PGX "}
	require.NoError(t, cfg.Normalize())

	assert.Equal(t, DriverPgx, cfg.Driver)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, 10, cfg.MaxConnections)
	assert.Equal(t, time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
}

func TestConfigNormalizeRejects(t *testing.T) {
	bad := []Config{
		{Host: "db", Name: "jobs", Driver: "mysql"},
		{Name: "jobs"},
		{Host: "db"},
	}
	for _, cfg := range bad {
		cfg := cfg
		assert.Error(t, cfg.Normalize(), "%+v", cfg)
	}
}

func TestConfigConnectionStrings(t *testing.T) {
	cfg := Config{User: "bot", Password: "pw", Host: "db", Port: "6432", Name: "jobs", SSLMode: "require"}
	assert.Equal(t, "user=bot password=pw host=db port=6432 dbname=jobs sslmode=require", cfg.DSN())
	assert.Equal(t, "postgres://bot:pw@db:6432/jobs?sslmode=require", cfg.URL())
}

func TestMigrationFileSelection(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_jobs_indexes.up.sql",
		"000001_create_jobs.up.sql",
		"000001_create_jobs.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}

	files := listMigrationFiles(dir)
	assert.Equal(t, []string{"000001_create_jobs.up.sql", "000002_jobs_indexes.up.sql"}, files)

	assert.Equal(t, []string{"000002_jobs_indexes.up.sql"}, selectApplied(files, 1, 2))
	assert.Empty(t, selectApplied(files, 2, 2))
	assert.Equal(t, uint64(2), parseVersion("000002_jobs_indexes.up.sql"))
}
