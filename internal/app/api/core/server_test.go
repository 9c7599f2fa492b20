package core

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/routegroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h44z/sms-portal/internal/config"
)

type observedRequest struct {
	path   string
	status int
}

type recordingObserver struct {
	mu       sync.Mutex
	requests []observedRequest
}

func (o *recordingObserver) ObserveServerRequest(path string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, observedRequest{path: path, status: status})
}

func testServer(t *testing.T, observer RequestObserver) *httptest.Server {
	s := NewServer(&config.MockConfig{RequestLogging: true}, observer, func(g *routegroup.Bundle) {
		g.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(RequestId(r.Context())))
		})
		g.HandleFunc("GET /panic", func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_requestIdIsEchoed(t *testing.T) {
	srv := testServer(t, nil)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/ping", nil)
	req.Header.Set(RequestIDKey, "rid-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "rid-1", resp.Header.Get(RequestIDKey))
}

func TestServer_requestIdIsGenerated(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Len(t, resp.Header.Get(RequestIDKey), 36)
}

func TestServer_panicIsRecovered(t *testing.T) {
	observer := &recordingObserver{}
	srv := testServer(t, observer)

	resp, err := http.Get(srv.URL + "/api/panic")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	observer.mu.Lock()
	defer observer.mu.Unlock()
	require.Len(t, observer.requests, 1)
	assert.Equal(t, observedRequest{path: "/api/panic", status: http.StatusInternalServerError}, observer.requests[0])
}

func TestServer_observesRequests(t *testing.T) {
	observer := &recordingObserver{}
	srv := testServer(t, observer)

	for range 2 {
		resp, err := http.Get(srv.URL + "/api/ping")
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	observer.mu.Lock()
	defer observer.mu.Unlock()
	assert.Equal(t, []observedRequest{
		{path: "/api/ping", status: http.StatusOK},
		{path: "/api/ping", status: http.StatusOK},
	}, observer.requests)
}
