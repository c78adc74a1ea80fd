package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/flashdeck/flashcards-api/internal/domain"
	"github.com/flashdeck/flashcards-api/internal/platform/logger"
	"github.com/flashdeck/flashcards-api/internal/service/auth"
	"github.com/flashdeck/flashcards-api/internal/store"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// maxUsernameAttempts bounds how many suffixed usernames are tried when
// provisioning a user whose preferred username is taken.
const maxUsernameAttempts = 5

// UserService maps external identities to users.
type UserService interface {
	// ResolveUser returns the user bound to the token's subject. Unknown
	// subjects are provisioned when auto-provisioning is enabled and reported
	// as store.ErrUserNotFound otherwise.
	ResolveUser(ctx context.Context, claims *auth.Claims) (*domain.User, error)

	// Register creates the user for the token's subject. An empty username is
	// derived from the profile claims.
	Register(ctx context.Context, claims *auth.Claims, username string) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ListUsers returns all active users.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// SetActive activates or deactivates a user.
	SetActive(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users         store.UserStore
	cache         *lru.Cache
	autoProvision bool
	logger        *slog.Logger
}

// NewUserService creates a new UserService. cacheSize bounds the number of
// resolved identities kept in memory.
func NewUserService(users store.UserStore, cacheSize int, autoProvision bool, logger *slog.Logger) (*UserServiceImpl, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create user cache: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:         users,
		cache:         cache,
		autoProvision: autoProvision,
		logger:        logger.With(slog.String("component", "user_service")),
	}, nil
}

var _ UserService = (*UserServiceImpl)(nil)

func (s *UserServiceImpl) cached(authSubject string) (*domain.User, bool) {
	v, ok := s.cache.Get(authSubject)
	if !ok {
		return nil, false
	}
	u := v.(domain.User)
	return &u, true
}

func (s *UserServiceImpl) remember(user *domain.User) {
	s.cache.Add(user.AuthSubject, *user)
}

// ResolveUser implements UserService.ResolveUser
func (s *UserServiceImpl) ResolveUser(ctx context.Context, claims *auth.Claims) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if u, ok := s.cached(claims.Subject); ok {
		return u, nil
	}

	user, err := s.users.GetByAuthSubject(ctx, claims.Subject)
	if err == nil {
		s.remember(user)
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) || !s.autoProvision {
		return nil, NewServiceError("resolve_user", "failed to resolve user", err)
	}

	user, err = s.provision(ctx, claims, "")
	if errors.Is(err, store.ErrAuthSubjectExists) {
		// Another request provisioned the same identity concurrently.
		user, err = s.users.GetByAuthSubject(ctx, claims.Subject)
	}
	if err != nil {
		log.Error("failed to provision user", slog.String("error", err.Error()))
		return nil, NewServiceError("resolve_user", "failed to provision user", err)
	}

	s.remember(user)
	log.Info("provisioned user",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return user, nil
}

// Register implements UserService.Register
func (s *UserServiceImpl) Register(ctx context.Context, claims *auth.Claims, username string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.provision(ctx, claims, strings.TrimSpace(username))
	if err != nil {
		log.Debug("failed to register user", slog.String("error", err.Error()))
		return nil, NewServiceError("register_user", "failed to register user", err)
	}

	s.remember(user)
	log.Info("registered user", slog.String("user_id", user.ID.String()))
	return user, nil
}

// provision creates a user for claims. An explicit username is used as is;
// otherwise one is derived from the claims and suffixed on collision.
func (s *UserServiceImpl) provision(ctx context.Context, claims *auth.Claims, username string) (*domain.User, error) {
	if username != "" {
		user, err := domain.NewUser(claims.Subject, username)
		if err != nil {
			return nil, err
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	base := DeriveUsername(claims.UsernameHint())
	candidate := base
	for attempt := 0; ; attempt++ {
		user, err := domain.NewUser(claims.Subject, candidate)
		if err != nil {
			return nil, err
		}
		err = s.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, store.ErrUsernameExists) || attempt+1 >= maxUsernameAttempts {
			return nil, err
		}
		candidate = withSuffix(base, randomSuffix())
	}
}

// DeriveUsername turns a profile hint into a valid username, falling back to
// "user-" followed by eight random hex digits.
func DeriveUsername(hint string) string {
	hint = strings.TrimSpace(hint)
	if utf8.RuneCountInString(hint) < domain.MinUsernameLength {
		return "user-" + randomSuffix()
	}
	return truncateRunes(hint, domain.MaxUsernameLength)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func withSuffix(base, suffix string) string {
	return truncateRunes(base, domain.MaxUsernameLength-len(suffix)-1) + "-" + suffix
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// GetUser implements UserService.GetUser
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_user", "failed to retrieve user", err)
	}
	return user, nil
}

// ListUsers implements UserService.ListUsers
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, NewServiceError("list_users", "failed to list users", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// SetActive implements UserService.SetActive
func (s *UserServiceImpl) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("set_active", "failed to retrieve user", err)
	}
	user.IsActive = active
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, NewServiceError("set_active", "failed to save user", err)
	}
	s.cache.Remove(user.AuthSubject)

	log.Info("updated user status",
		slog.String("user_id", userID.String()),
		slog.Bool("active", active))
	return user, nil
}
