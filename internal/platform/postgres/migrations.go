package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// MigrationsDir is the directory inside Migrations holding the goose files.
const MigrationsDir = "migrations"

// Migrations holds the SQL schema migrations, embedded into the binary.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// setupGoose points goose at the embedded migrations. goose keeps this as
// package-level state, so every entry point calls it before running commands.
func setupGoose(logger goose.Logger) error {
	goose.SetBaseFS(Migrations)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// Migrate runs a goose command ("up", "down", "status", "version", "reset",
// "redo") against db using the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger goose.Logger, args ...string) error {
	if err := setupGoose(logger); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, MigrationsDir, args...); err != nil {
		return fmt.Errorf("migration %q failed: %w", command, err)
	}
	return nil
}
