package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	evbus "github.com/vardius/message-bus"

	"github.com/h44z/sms-portal/internal/app"
	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

type memoryActivityRepo struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
}

func (m *memoryActivityRepo) SaveActivityEntry(_ context.Context, entry *domain.ActivityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) GetActivityEntries(_ context.Context, profile string, limit int) ([]domain.ActivityEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.ActivityEntry
	for i := len(m.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if m.entries[i].Profile == profile {
			result = append(result, m.entries[i])
		}
	}
	return result, nil
}

func (m *memoryActivityRepo) kinds() []domain.ActivityKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]domain.ActivityKind, len(m.entries))
	for i, e := range m.entries {
		kinds[i] = e.Kind
	}
	return kinds
}

func TestRecorder_RecordsBusEvents(t *testing.T) {
	cfg := &config.Config{}
	cfg.Advanced.RecordActivity = true
	bus := evbus.New(10)
	repo := &memoryActivityRepo{}

	_, err := NewActivityRecorder(cfg, bus, repo)
	require.NoError(t, err)

	bus.Publish(app.TopicAuthLogin, app.SessionEvent{Profile: "default", Username: "alice"})
	bus.Publish(app.TopicRouteChanged, app.RouteEvent{Profile: "default", Username: "alice", View: "campaign"})
	bus.Publish(app.TopicSessionExpired, app.SessionEvent{Profile: "default", Username: "alice"})

	assert.Eventually(t, func() bool {
		return len(repo.kinds()) == 3
	}, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t,
		[]domain.ActivityKind{domain.ActivityLogin, domain.ActivityNavigate, domain.ActivitySessionExpired},
		repo.kinds())

	recent, err := NewManager(repo).GetRecent(context.Background(), "default", 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestRecorder_Disabled(t *testing.T) {
	cfg := &config.Config{}
	bus := evbus.New(10)
	repo := &memoryActivityRepo{}

	_, err := NewActivityRecorder(cfg, bus, repo)
	require.NoError(t, err)

	bus.Publish(app.TopicAuthLogin, app.SessionEvent{Profile: "default", Username: "alice"})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, repo.kinds())
}

type slowActivityRepo struct {
	memoryActivityRepo
	delay time.Duration
}

func (s *slowActivityRepo) SaveActivityEntry(ctx context.Context, entry *domain.ActivityEntry) error {
	time.Sleep(s.delay)
	return s.memoryActivityRepo.SaveActivityEntry(ctx, entry)
}

func TestRecorder_CloseStoresPendingEvents(t *testing.T) {
	cfg := &config.Config{}
	cfg.Advanced.RecordActivity = true
	bus := app.NewEventBus(10)
	repo := &slowActivityRepo{delay: 20 * time.Millisecond}

	r, err := NewActivityRecorder(cfg, bus, repo)
	require.NoError(t, err)

	bus.Publish(app.TopicAuthLogin, app.SessionEvent{Profile: "default", Username: "alice"})
	bus.Publish(app.TopicSessionLogout, app.SessionEvent{Profile: "default", Username: "alice"})

	require.NoError(t, r.Close(context.Background()))
	assert.ElementsMatch(t, []domain.ActivityKind{domain.ActivityLogin, domain.ActivityLogout}, repo.kinds())

	// detached from the bus
	bus.Publish(app.TopicAuthLogin, app.SessionEvent{Profile: "default", Username: "bob"})
	require.NoError(t, bus.Drain(context.Background()))
	assert.Len(t, repo.kinds(), 2)
}

func TestRecorder_CloseDisabled(t *testing.T) {
	r, err := NewActivityRecorder(&config.Config{}, app.NewEventBus(10), &memoryActivityRepo{})
	require.NoError(t, err)
	assert.NoError(t, r.Close(context.Background()))
}

func TestManager_LastLogin(t *testing.T) {
	repo := &memoryActivityRepo{}
	m := NewManager(repo)
	ctx := context.Background()

	username, err := m.LastLogin(ctx, "default")
	require.NoError(t, err)
	assert.Empty(t, username)

	for _, e := range []domain.ActivityEntry{
		{Profile: "default", Kind: domain.ActivityLogin, Username: "alice"},
		{Profile: "default", Kind: domain.ActivityLogin, Username: "bob"},
		{Profile: "default", Kind: domain.ActivityNavigate, Username: "bob"},
		{Profile: "other", Kind: domain.ActivityLogin, Username: "carol"},
	} {
		require.NoError(t, repo.SaveActivityEntry(ctx, &e))
	}

	username, err = m.LastLogin(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "bob", username)
}
