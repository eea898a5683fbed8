package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/anuj-jha-1/Expense-Tracker/internal/auth"
	"github.com/anuj-jha-1/Expense-Tracker/internal/cache"
	"github.com/anuj-jha-1/Expense-Tracker/internal/metrics"
	"github.com/anuj-jha-1/Expense-Tracker/internal/model"
	"github.com/anuj-jha-1/Expense-Tracker/internal/repository"
)

const (
	// MinPasswordLength is the shortest password accepted at registration.
	MinPasswordLength = 8
	// MaxPasswordLength caps the input fed to the password hash.
	MaxPasswordLength = 1024
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionCache holds the token denylist and resolved identities.
// Implemented by cache.Cache and cache.Local.
type SessionCache interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	GetIdentity(ctx context.Context, userID string) (*model.Identity, error)
	SetIdentity(ctx context.Context, id *model.Identity) error
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// AuthService handles registration, login and token resolution.
type AuthService struct {
	users    UserStore
	sessions SessionCache
	tokens   *auth.TokenManager
	metrics  metrics.Recorder
	logger   *slog.Logger
	params   auth.Params

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions SessionCache, tokens *auth.TokenManager, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if sessions == nil {
		sessions = cache.NewLocal()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		metrics:  recorder,
		logger:   logger,
		params:   auth.DefaultParams,
	}
}

// SetHashParams overrides the Argon2id cost used for new password hashes.
func (s *AuthService) SetHashParams(p auth.Params) {
	s.params = p
}

// Register creates an account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashWithParams(password, s.params)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.logger.InfoContext(ctx, "user_registered", "user_id", user.ID)

	return s.issue(user)
}

// Login verifies credentials and returns a session token.
// Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.metrics.IncAuthFailed()
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		// Burn the same hashing cost as a real check.
		_, _ = auth.VerifyPassword(password, s.dummy())
		s.metrics.IncAuthFailed()
		return nil, ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncAuthFailed()
		s.logger.WarnContext(ctx, "login_failed", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// IssueToken returns a session token for an existing account without a password.
// Used by operator tooling.
func (s *AuthService) IssueToken(ctx context.Context, email string) (*AuthResult, error) {
	user, err := s.LookupUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// LookupUser finds an account by email.
func (s *AuthService) LookupUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// ResolveToken verifies a bearer token and returns the identity it names.
// The user must still exist; lookups are cached for cache.IdentityTTL.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*model.Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.metrics.IncAuthFailed()
		return nil, ErrUnauthenticated
	}

	revoked, err := s.sessions.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "revocation_check_failed", "error", err)
	} else if revoked {
		s.metrics.IncAuthFailed()
		return nil, ErrUnauthenticated
	}

	id, err := s.sessions.GetIdentity(ctx, claims.Subject)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "identity_cache_failed", "error", err)
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncAuthFailed()
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	id = &model.Identity{UserID: user.ID, Email: user.Email}
	if err := s.sessions.SetIdentity(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "identity_cache_failed", "error", err)
	}
	return id, nil
}

// Logout revokes token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return ErrUnauthenticated
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.sessions.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.InfoContext(ctx, "user_logged_out", "user_id", claims.Subject)
	return nil
}

// Me returns the account for userID.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, claims, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashWithParams(uuid.NewString(), s.params)
	})
	return s.dummyHash
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email", ErrMissingField)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", ErrInvalidEmail)
	}
	return email, nil
}

func validatePassword(password string) error {
	if password == "" {
		return invalid("password", ErrMissingField)
	}
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return invalid("password", ErrWeakPassword)
	}
	if n > MaxPasswordLength {
		return invalid("password", ErrWeakPassword)
	}
	return nil
}
