package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/flashdeck/flashcards-api/internal/api/shared"
	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/service/auth"
	"github.com/flashdeck/flashcards-api/internal/store"
)

// UserResolver maps validated claims to an application user.
type UserResolver interface {
	ResolveUser(ctx context.Context, claims *auth.Claims) (*domain.User, error)
}

// AuthMiddleware provides bearer token authentication for routes.
type AuthMiddleware struct {
	validator auth.TokenValidator
	users     UserResolver
	extract   jwtmiddleware.TokenExtractor
	logger    *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(validator auth.TokenValidator, users UserResolver, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		validator: validator,
		users:     users,
		extract:   jwtmiddleware.AuthHeaderTokenExtractor,
		logger:    logger.With(slog.String("component", "auth_middleware")),
	}
}

// RequireToken validates the bearer token and stores its claims in the
// request context without resolving a user. It guards registration.
func (m *AuthMiddleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.claims(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.WithClaims(r.Context(), claims)))
	})
}

// Authenticate validates the bearer token, resolves the caller's user and
// adds both to the request context. Inactive users are rejected with 403.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.claims(w, r)
		if !ok {
			return
		}

		user, err := m.users.ResolveUser(r.Context(), claims)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			shared.RespondWithErrorAndLog(w, r, http.StatusForbidden,
				"User is not registered", err, shared.WithElevatedLogLevel())
			return
		case err != nil:
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Authentication error", err)
			return
		case !user.IsActive:
			shared.RespondWithErrorAndLog(w, r, http.StatusForbidden,
				"User account is inactive", domain.ErrInactiveUser, shared.WithElevatedLogLevel())
			return
		}

		ctx := shared.WithClaims(r.Context(), claims)
		ctx = shared.WithUser(ctx, user)
		log := logger.FromContextOrDefault(ctx, m.logger).With(slog.String("user_id", user.ID.String()))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// claims extracts and validates the bearer token, writing a 401 on failure.
func (m *AuthMiddleware) claims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	token, err := m.extract(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			"Invalid authorization format", err, shared.WithElevatedLogLevel())
		return nil, false
	}
	if token == "" {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			"Authorization header required", auth.ErrMissingToken)
		return nil, false
	}

	claims, err := m.validator.ValidateToken(r.Context(), token)
	switch {
	case err == nil:
		return claims, true
	case errors.Is(err, auth.ErrExpiredToken):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err)
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingSubject):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			"Invalid token", err, shared.WithElevatedLogLevel())
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
	}
	return nil, false
}
