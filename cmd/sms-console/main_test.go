package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/h44z/sms-portal/internal/adapters"
	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

type testGateway struct {
	*httptest.Server
	requests atomic.Int32
	tokens   chan string
}

func newTestGateway(t *testing.T, status int, body string) *testGateway {
	t.Helper()

	g := &testGateway{tokens: make(chan string, 10)}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.requests.Add(1)
		select {
		case g.tokens <- r.URL.Query().Get("Token"):
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(g.Close)
	return g
}

func testConfig(t *testing.T, gatewayUrl string, sessionBackend config.SessionBackend) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Gateway.BaseUrl = gatewayUrl
	cfg.Gateway.RequestTimeout = 5 * time.Second
	cfg.Session.Backend = sessionBackend
	cfg.Session.Profile = "default"
	cfg.Database.Type = config.DatabaseSQLite
	cfg.Database.DSN = filepath.Join(t.TempDir(), "console.db")
	cfg.Advanced.RecordActivity = true
	return cfg
}

func setupBackend(t *testing.T, cfg *config.Config) *consoleBackend {
	t.Helper()

	b, err := newConsoleBackend(context.Background(), cfg)
	require.NoError(t, err)

	backend = b
	t.Cleanup(func() { backend = nil })
	return b
}

// runCommand runs one console command the way main does, without config loading and logging setup.
func runCommand(t *testing.T, after cli.AfterFunc, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	a := &cli.App{
		Name:      "sms-console",
		Commands:  commands,
		Writer:    &out,
		ErrWriter: io.Discard,
		After:     after,
	}
	err := a.RunContext(context.Background(), append([]string{"sms-console"}, args...))
	return out.String(), err
}

func closeBackend(b *consoleBackend) cli.AfterFunc {
	return func(*cli.Context) error {
		b.Close()
		return nil
	}
}

func TestCommands_RejectedTokenIsCleared(t *testing.T) {
	gw := newTestGateway(t, http.StatusUnauthorized, `{"Errors":[{"Message":"Invalid token."}]}`)
	b := setupBackend(t, testConfig(t, gw.URL, config.SessionBackendDatabase))
	ctx := context.Background()

	for _, command := range []string{"whoami", "status"} {
		require.NoError(t, b.session.SetToken(ctx, "stale"))

		_, err := runCommand(t, nil, command)
		assert.ErrorIs(t, err, errSessionExpired, command)

		_, ok := b.session.Token(ctx)
		assert.False(t, ok, command)
		_, err = b.database.LoadToken(ctx, "default")
		assert.ErrorIs(t, err, domain.ErrNotFound, command)
		assert.Equal(t, "stale", <-gw.tokens, command)
	}
	assert.EqualValues(t, 2, gw.requests.Load())

	b.Close()
	entries, err := b.activity.GetRecent(ctx, "default", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, domain.ActivitySessionExpired, e.Kind)
	}
}

func TestCommands_RequireStoredToken(t *testing.T) {
	gw := newTestGateway(t, http.StatusOK, `{"Response":[]}`)
	setupBackend(t, testConfig(t, gw.URL, config.SessionBackendMemory))

	for _, command := range []string{"whoami", "status"} {
		_, err := runCommand(t, nil, command)
		assert.ErrorContains(t, err, "not logged in", command)
	}
	assert.Zero(t, gw.requests.Load())
}

func TestCommands_Status(t *testing.T) {
	gw := newTestGateway(t, http.StatusOK,
		`{"Response":[{"Program":"smsd","Status":"running","Ok":true},{"Program":"campaignd","Status":"stopped","Ok":false}]}`)
	b := setupBackend(t, testConfig(t, gw.URL, config.SessionBackendMemory))
	require.NoError(t, b.session.SetToken(context.Background(), "valid"))

	out, err := runCommand(t, closeBackend(b), "status")
	require.NoError(t, err)

	assert.Equal(t, "PROGRAM    STATUS   OK\n"+
		"smsd       running  true\n"+
		"campaignd  stopped  false\n", out)

	_, ok := b.session.Token(context.Background())
	assert.True(t, ok)
}

func TestCommands_LogoutRecordsActivity(t *testing.T) {
	gw := newTestGateway(t, http.StatusOK, `{"Response":{}}`)
	b := setupBackend(t, testConfig(t, gw.URL, config.SessionBackendDatabase))
	ctx := context.Background()

	require.NoError(t, b.database.SaveActivityEntry(ctx, &domain.ActivityEntry{
		CreatedAt: time.Now().Add(-time.Minute),
		Profile:   "default",
		Kind:      domain.ActivityLogin,
		Username:  "alice",
		Message:   "user alice logged in",
	}))
	require.NoError(t, b.session.SetToken(ctx, "valid"))

	out, err := runCommand(t, closeBackend(b), "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out of profile default\n", out)

	// no waiting here, the backend must have stored the event on close
	entries, err := b.activity.GetRecent(ctx, "default", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActivityLogout, entries[0].Kind)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, "user alice logged out", entries[0].Message)

	_, err = b.database.LoadToken(ctx, "default")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, gw.requests.Load())
}

func TestNewConsoleBackend_SessionBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	t.Run("database", func(t *testing.T) {
		cfg := testConfig(t, "http://127.0.0.1:1", config.SessionBackendDatabase)
		b := setupBackend(t, cfg)
		defer b.Close()

		require.NoError(t, b.session.SetToken(ctx, "db-token"))
		token, err := b.database.LoadToken(ctx, "default")
		require.NoError(t, err)
		assert.Equal(t, "db-token", token)
	})

	t.Run("memory", func(t *testing.T) {
		cfg := testConfig(t, "http://127.0.0.1:1", config.SessionBackendMemory)
		b := setupBackend(t, cfg)
		defer b.Close()

		require.NoError(t, b.session.SetToken(ctx, "mem-token"))
		_, err := b.database.LoadToken(ctx, "default")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("redis", func(t *testing.T) {
		cfg := testConfig(t, "http://127.0.0.1:1", config.SessionBackendRedis)
		cfg.Session.Redis.Address = mr.Addr()
		b := setupBackend(t, cfg)
		defer b.Close()

		require.NoError(t, b.session.SetToken(ctx, "redis-token"))
		_, err := b.database.LoadToken(ctx, "default")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.Len(t, b.closers, 1)
		assert.IsType(t, &adapters.RedisSessionRepo{}, b.closers[0])
	})
}
