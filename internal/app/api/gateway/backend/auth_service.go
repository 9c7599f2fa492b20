package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/google/uuid"

	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

// AuthService issues session tokens. Tokens live in memory and expire after the configured idle lifetime.
type AuthService struct {
	cfg *config.MockConfig

	users  UserDatabaseRepo
	tokens *memstore.MemStore
}

func NewAuthService(cfg *config.MockConfig, users UserDatabaseRepo) *AuthService {
	return &AuthService{
		cfg:    cfg,
		users:  users,
		tokens: memstore.NewWithCleanupInterval(time.Minute),
	}
}

// Close stops the background cleanup of expired tokens.
func (a *AuthService) Close() {
	a.tokens.StopCleanup()
}

// Login checks the credentials and returns a new token.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := a.users.GetUser(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fail(domain.ErrNotAuthenticated, "Invalid credentials.")
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user %s: %w", username, err)
	}

	if err := user.CheckPassword(password); err != nil {
		slog.Debug("login failed", "username", username, "error", err)
		return "", fail(domain.ErrNotAuthenticated, "Invalid credentials.")
	}
	if user.Suspended {
		return "", fail(domain.ErrNoPermission, "Your account is suspended.")
	}

	token := uuid.NewString()
	if err := a.tokens.Commit(token, []byte(user.Username), time.Now().Add(a.cfg.TokenLifetime)); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	slog.Debug("issued token", "username", user.Username)
	return token, nil
}

// Authenticate returns the user owning the token and extends the token lifetime.
// Unknown, expired and suspended tokens yield domain.ErrNotAuthenticated.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, fail(domain.ErrNotAuthenticated, "Invalid token.")
	}

	b, found, err := a.tokens.Find(token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if !found {
		return nil, fail(domain.ErrNotAuthenticated, "Invalid token.")
	}

	user, err := a.users.GetUser(ctx, string(b))
	if err != nil || user.Suspended {
		_ = a.tokens.Delete(token)
		return nil, fail(domain.ErrNotAuthenticated, "Invalid token.")
	}

	if err := a.tokens.Commit(token, b, time.Now().Add(a.cfg.TokenLifetime)); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	return user, nil
}

// Revoke invalidates the token.
func (a *AuthService) Revoke(token string) error {
	return a.tokens.Delete(token)
}
