package database

import (
	"database/sql"
	"embed"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func setupGoose() error {
	goose.SetBaseFS(migrationsFS)
	return goose.SetDialect("postgres")
}

// Migrate applies all pending migrations.
func Migrate(db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return goose.Up(db, migrationsDir)
}

// MigrateCmd runs an arbitrary goose command against the embedded migrations.
func MigrateCmd(command string, db *sql.DB, args ...string) error {
	if err := setupGoose(); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return goose.Run(command, db, migrationsDir, args...)
}
