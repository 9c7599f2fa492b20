package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	evbus "github.com/vardius/message-bus"

	"github.com/h44z/sms-portal/internal/app"
	"github.com/h44z/sms-portal/internal/domain"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) LoadToken(ctx context.Context, profile string) (string, error) {
	args := m.Called(ctx, profile)
	return args.String(0), args.Error(1)
}

func (m *mockRepo) SaveToken(ctx context.Context, profile, token string) error {
	return m.Called(ctx, profile, token).Error(0)
}

func (m *mockRepo) DeleteToken(ctx context.Context, profile string) error {
	return m.Called(ctx, profile).Error(0)
}

func TestStore_TokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	store := NewStore("default", repo, evbus.New(10))

	_, ok := store.Token(ctx)
	assert.False(t, ok)

	require.NoError(t, store.SetToken(ctx, "tok-1"))
	token, ok := store.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)

	// a second store on the same repository sees the persisted token
	other := NewStore("default", repo, evbus.New(10))
	token, ok = other.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)

	require.NoError(t, store.ClearToken(ctx))
	require.NoError(t, store.ClearToken(ctx))
	_, ok = store.Token(ctx)
	assert.False(t, ok)

	_, err := repo.LoadToken(ctx, "default")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SetTokenRejectsEmpty(t *testing.T) {
	store := NewStore("default", NewMemoryRepo(), evbus.New(10))
	assert.ErrorIs(t, store.SetToken(context.Background(), ""), domain.ErrInvalidData)
}

func TestStore_LoadFailureMeansLoggedOut(t *testing.T) {
	repo := &mockRepo{}
	repo.On("LoadToken", mock.Anything, "default").Return("", errors.New("disk on fire")).Once()

	store := NewStore("default", repo, evbus.New(10))
	_, ok := store.Token(context.Background())
	assert.False(t, ok)

	// the result is cached, the repository is asked only once
	_, ok = store.Token(context.Background())
	assert.False(t, ok)
	repo.AssertExpectations(t)
}

func TestStore_ClearTokenWithoutTokenSkipsRepository(t *testing.T) {
	repo := &mockRepo{}
	repo.On("LoadToken", mock.Anything, "default").Return("", domain.ErrNotFound).Once()

	store := NewStore("default", repo, evbus.New(10))
	_, _ = store.Token(context.Background())
	require.NoError(t, store.ClearToken(context.Background()))

	repo.AssertNotCalled(t, "DeleteToken", mock.Anything, mock.Anything)
}

func TestStore_LogoutPublishesEvent(t *testing.T) {
	ctx := context.Background()
	bus := evbus.New(10)
	events := make(chan app.SessionEvent, 1)
	require.NoError(t, bus.Subscribe(app.TopicSessionLogout, func(ev app.SessionEvent) {
		events <- ev
	}))

	store := NewStore("ops", NewMemoryRepo(), bus)
	require.NoError(t, store.SetToken(ctx, "tok"))
	store.SetUsername("alice")
	require.NoError(t, store.Logout(ctx))

	select {
	case ev := <-events:
		assert.Equal(t, "ops", ev.Profile)
		assert.Equal(t, "alice", ev.Username)
	case <-time.After(time.Second):
		t.Fatal("logout event not published")
	}

	_, ok := store.Token(ctx)
	assert.False(t, ok)
}

func TestStore_ExpirePublishesEvent(t *testing.T) {
	ctx := context.Background()
	bus := evbus.New(10)
	events := make(chan app.SessionEvent, 1)
	require.NoError(t, bus.Subscribe(app.TopicSessionExpired, func(ev app.SessionEvent) {
		events <- ev
	}))

	store := NewStore("default", NewMemoryRepo(), bus)
	require.NoError(t, store.SetToken(ctx, "tok"))
	require.NoError(t, store.Expire(ctx))

	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("expired event not published")
	}
	_, ok := store.Token(ctx)
	assert.False(t, ok)
}
