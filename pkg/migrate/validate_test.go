package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	sql := "-- +goose Up\n" + body + "\n-- +goose Down\nSELECT 1;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644))
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "init.sql", "CREATE TABLE users (id int);")

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid migration filename")
}

func TestValidateDirRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20250901120000_one.sql", "CREATE TABLE a (id int);")
	writeMigration(t, dir, "20250901120000_two.sql", "CREATE TABLE b (id int);")

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate migration version")
}

func TestValidateDirRejectsTableCreatedTwice(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20250901120000_one.sql", "CREATE TABLE users (id int);")
	writeMigration(t, dir, "20250903120000_two.sql", "CREATE TABLE IF NOT EXISTS users (id int);")

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), `table "users"`)
}

func TestValidateDirIgnoresCreatesInDownSection(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20250901120000_one.sql", "DROP TABLE users;\n-- recreate on rollback follows the Down marker")
	sql := "-- +goose Up\nDROP TABLE users;\n-- +goose Down\nCREATE TABLE users (id int);\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250903120000_two.sql"), []byte(sql), 0o644))
	writeMigration(t, dir, "20250905120000_three.sql", "CREATE TABLE users (id int);")

	require.NoError(t, ValidateDir(dir))
}
