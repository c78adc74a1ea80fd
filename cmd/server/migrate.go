package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/flashdeck/flashcards-api/internal/platform/postgres"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// migrationCommands are the goose commands exposed by the migrate subcommand.
var migrationCommands = []string{"up", "down", "status", "version", "reset", "redo"}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [" + strings.Join(migrationCommands, "|") + "]",
		Short: "Run database migrations",
		Long: `Run the embedded goose migrations against database.url.
Without an argument pending migrations are applied ("up").`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, log, err := opts.loadAppConfig()
			if err != nil {
				return err
			}

			log.Info("using database", "url", maskDatabaseURL(cfg.Database.URL))
			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Error("error closing database connection", "error", err)
				}
			}()

			return runMigrations(cmd.Context(), db, command, log)
		},
	}
}

// runMigrations runs one goose command, logging under a correlation ID so a
// whole migration run can be traced.
func runMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if !slices.Contains(migrationCommands, command) {
		return fmt.Errorf("unknown migration command %q", command)
	}

	log := logger.With(
		"correlation_id", uuid.New().String(),
		"component", "migrations",
		"command", command,
	)

	start := time.Now()
	log.Info("starting migration operation")

	if err := postgres.Migrate(ctx, db, command, &slogGooseLogger{logger: log}); err != nil {
		log.Error("migration operation failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return err
	}

	log.Info("migration operation completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger. Unlike the standard Fatalf it does not
// exit; goose also returns the error, which the command reports.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// maskDatabaseURL replaces the password in a database URL with "xxxxx" for
// safe logging.
func maskDatabaseURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	return parsed.Redacted()
}
