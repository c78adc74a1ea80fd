package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/flashdeck/flashcards-api/internal/config"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
)

// jwksCacheTTL is how long the issuer's key set is cached before refetching.
const jwksCacheTTL = 5 * time.Minute

// profileClaims are the non-registered claims read from issuer tokens.
type profileClaims struct {
	Nickname          string `json:"nickname"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
}

// Validate satisfies validator.CustomClaims. Profile claims are optional.
func (c *profileClaims) Validate(context.Context) error {
	return nil
}

// jwksValidator verifies RS256 tokens against the issuer's published key set.
type jwksValidator struct {
	validator *validator.Validator
}

var _ TokenValidator = (*jwksValidator)(nil)

// NewJWKSValidator creates a validator that fetches signing keys from
// <issuer>/.well-known/jwks.json and checks issuer and audience.
func NewJWKSValidator(cfg config.AuthConfig) (*jwksValidator, error) {
	issuerURL, err := url.Parse(cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, jwksCacheTTL)

	v, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &profileClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up JWT validator: %w", err)
	}
	return &jwksValidator{validator: v}, nil
}

// ValidateToken validates the token and maps the validated claims.
func (v *jwksValidator) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	raw, err := v.validator.ValidateToken(ctx, tokenString)
	if err != nil {
		log.Debug("token validation failed", "error", err)
		return nil, ErrInvalidToken
	}

	validated, ok := raw.(*validator.ValidatedClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claimsFromValidated(validated)
}

// claimsFromValidated converts the middleware's claim set into Claims.
func claimsFromValidated(validated *validator.ValidatedClaims) (*Claims, error) {
	if validated.RegisteredClaims.Subject == "" {
		return nil, ErrMissingSubject
	}
	claims := &Claims{Subject: validated.RegisteredClaims.Subject}
	if validated.RegisteredClaims.Expiry != 0 {
		claims.ExpiresAt = time.Unix(validated.RegisteredClaims.Expiry, 0).UTC()
	}
	if profile, ok := validated.CustomClaims.(*profileClaims); ok && profile != nil {
		claims.Nickname = profile.Nickname
		claims.PreferredUsername = profile.PreferredUsername
		claims.Email = profile.Email
	}
	return claims, nil
}
