package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/flashdeck/flashcards-api/internal/api"
	apiMiddleware "github.com/flashdeck/flashcards-api/internal/api/middleware"
	"github.com/flashdeck/flashcards-api/internal/config"
	"github.com/flashdeck/flashcards-api/internal/platform/postgres"
	"github.com/flashdeck/flashcards-api/internal/service"
	"github.com/flashdeck/flashcards-api/internal/service/auth"
	"github.com/flashdeck/flashcards-api/internal/service/export"
	"github.com/flashdeck/flashcards-api/internal/service/upload"
	"github.com/flashdeck/flashcards-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	started time.Time

	handlers api.Handlers
	authn    api.Authenticator
}

// stores groups the PostgreSQL stores shared by the services.
type stores struct {
	users     store.UserStore
	subjects  store.SubjectStore
	decks     store.DeckStore
	cards     store.CardStore
	histories store.CardHistoryStore
	stats     store.StatsStore
}

func newPostgresStores(db *sql.DB, logger *slog.Logger) stores {
	return stores{
		users:     postgres.NewPostgresUserStore(db, logger),
		subjects:  postgres.NewPostgresSubjectStore(db, logger),
		decks:     postgres.NewPostgresDeckStore(db, logger),
		cards:     postgres.NewPostgresCardStore(db, logger),
		histories: postgres.NewPostgresCardHistoryStore(db, logger),
		stats:     postgres.NewPostgresStatsStore(db, logger),
	}
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	validator, err := auth.NewTokenValidator(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token validator: %w", err)
	}
	logger.Info("token validation initialized", "mode", authMode(cfg.Auth))

	app, err := assemble(cfg, logger, newPostgresStores(db, logger), store.NewSQLTransactor(db), validator)
	if err != nil {
		return nil, err
	}
	app.db = db

	logger.Info("application initialized successfully")
	return app, nil
}

// assemble builds services and handlers on top of the given stores.
func assemble(
	cfg *config.Config,
	logger *slog.Logger,
	s stores,
	tx store.Transactor,
	validator auth.TokenValidator,
) (*application, error) {
	users, err := service.NewUserService(s.users, cfg.Auth.UserCacheSize, cfg.Auth.AutoProvision, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	stats, err := service.NewStatsService(s.stats, s.cards, s.decks, s.histories, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats service: %w", err)
	}
	subjects, err := service.NewSubjectService(s.subjects, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create subject service: %w", err)
	}
	decks, err := service.NewDeckService(tx, s.decks, s.cards, s.subjects, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}
	cards, err := service.NewCardService(tx, s.cards, s.decks, s.subjects, s.histories, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}
	ratings, err := service.NewRatingService(s.cards, s.histories, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rating service: %w", err)
	}
	exports, err := export.NewExportService(s.subjects, s.decks, s.cards, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create export service: %w", err)
	}
	uploads, err := upload.NewUploadService(tx, s.subjects, s.decks, s.cards, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload service: %w", err)
	}

	return &application{
		config:  cfg,
		logger:  logger,
		started: time.Now(),
		handlers: api.Handlers{
			Users:    api.NewUserHandler(users, stats, logger),
			Subjects: api.NewSubjectHandler(subjects, logger),
			Decks:    api.NewDeckHandler(decks, logger),
			Cards:    api.NewCardHandler(cards, ratings, logger),
			Transfer: api.NewTransferHandler(exports, uploads, cfg.Upload.MaxBytes, logger),
		},
		authn: apiMiddleware.NewAuthMiddleware(validator, users, logger),
	}, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
