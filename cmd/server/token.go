package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/flashdeck/flashcards-api/internal/service/auth"
	"github.com/spf13/cobra"
)

// errIssuerMode is returned when tokens are verified against an external issuer.
var errIssuerMode = errors.New("tokens can only be issued with auth.jwt_secret; an issuer is configured")

type tokenOptions struct {
	subject  string
	nickname string
	email    string
	lifetime time.Duration
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	topts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token",
		Long: `Issue an HS256 bearer token signed with auth.jwt_secret. Intended for
local development and smoke tests; production deployments verify tokens
from an external issuer.

Examples:
  flashcards-api token --subject "local|alice" --nickname alice
  flashcards-api token --subject "local|bob" --ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.loadAppConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.UsesJWKS() {
				return errIssuerMode
			}

			issuer, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to create token issuer: %w", err)
			}

			token, err := issuer.GenerateToken(cmd.Context(), auth.Claims{
				Subject:  topts.subject,
				Nickname: topts.nickname,
				Email:    topts.email,
			}, topts.lifetime)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&topts.subject, "subject", "", "Subject claim identifying the user (required)")
	cmd.Flags().StringVar(&topts.nickname, "nickname", "", "Nickname claim, used as the default username")
	cmd.Flags().StringVar(&topts.email, "email", "", "Email claim")
	cmd.Flags().DurationVar(&topts.lifetime, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
