package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	evbus "github.com/vardius/message-bus"

	"github.com/h44z/sms-portal/internal/app"
	"github.com/h44z/sms-portal/internal/domain"
)

// Repository persists the token of a console profile.
type Repository interface {
	// LoadToken returns domain.ErrNotFound if no token is stored for the profile.
	LoadToken(ctx context.Context, profile string) (string, error)
	SaveToken(ctx context.Context, profile, token string) error
	DeleteToken(ctx context.Context, profile string) error
}

// Store holds the single session token of one console profile.
type Store struct {
	profile string
	repo    Repository
	bus     evbus.MessageBus

	mu     sync.Mutex
	loaded bool
	token  string
	user   string // username of the last login, only used for events
}

func NewStore(profile string, repo Repository, bus evbus.MessageBus) *Store {
	return &Store{
		profile: profile,
		repo:    repo,
		bus:     bus,
	}
}

func (s *Store) Profile() string {
	return s.profile
}

// Token returns the current token. The second return value is false if no token is present.
func (s *Store) Token(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		token, err := s.repo.LoadToken(ctx, s.profile)
		switch {
		case err == nil:
			s.token = token
		case errors.Is(err, domain.ErrNotFound):
			s.token = ""
		default:
			slog.Warn("failed to load session token, treating as logged out",
				"profile", s.profile, "error", err)
			s.token = ""
		}
		s.loaded = true
	}

	return s.token, s.token != ""
}

// SetToken persists the token returned by a successful login.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", domain.ErrInvalidData)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveToken(ctx, s.profile, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	s.token = token
	s.loaded = true

	return nil
}

// SetUsername remembers the user the token belongs to.
func (s *Store) SetUsername(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = username
}

// Username returns the user set by SetUsername, or an empty string.
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// ClearToken removes the token. Clearing an absent token is a no-op.
func (s *Store) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clear(ctx)
}

func (s *Store) clear(ctx context.Context) error {
	hadToken := s.token != "" || !s.loaded
	s.token = ""
	s.loaded = true
	if !hadToken {
		return nil
	}

	if err := s.repo.DeleteToken(ctx, s.profile); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Logout clears the token and announces the logout on the message bus.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	username := s.user
	err := s.clear(ctx)
	s.user = ""
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.bus.Publish(app.TopicSessionLogout, app.SessionEvent{Profile: s.profile, Username: username})
	return nil
}

// Expire clears the token after the gateway rejected it.
func (s *Store) Expire(ctx context.Context) error {
	s.mu.Lock()
	username := s.user
	err := s.clear(ctx)
	s.mu.Unlock()

	s.bus.Publish(app.TopicSessionExpired, app.SessionEvent{Profile: s.profile, Username: username})
	return err
}
