package main

import (
	"fmt"
	"log/slog"

	"github.com/flashdeck/flashcards-api/internal/config"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configFile string
}

// newRootCmd builds the command tree. Each call returns fresh commands so
// tests can execute them independently.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "flashcards-api",
		Short: "Flashcards API server",
		Long: `Flashcards API serves subjects, decks and cards over HTTP, with CSV
import and export and per-user rating history.

Configuration is read from defaults, an optional YAML file and FLASHCARDS_*
environment variables, in increasing order of precedence.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "",
		"Path to a config file (default: ./config.yaml if present)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

// loadAppConfig loads configuration and sets up the process logger from it.
func (o *rootOptions) loadAppConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"auth_mode", authMode(cfg.Auth))
	return cfg, log, nil
}

func authMode(cfg config.AuthConfig) string {
	if cfg.UsesJWKS() {
		return "jwks"
	}
	return "hmac"
}
