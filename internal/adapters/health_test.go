package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthServer(t *testing.T) {
	tests := []struct {
		name     string
		checks   map[string]HealthCheck
		wantCode int
		wantOk   bool
	}{
		{
			name:     "no checks",
			checks:   nil,
			wantCode: http.StatusOK,
			wantOk:   true,
		},
		{
			name: "all passing",
			checks: map[string]HealthCheck{
				"database": func(context.Context) error { return nil },
			},
			wantCode: http.StatusOK,
			wantOk:   true,
		},
		{
			name: "one failing",
			checks: map[string]HealthCheck{
				"database": func(context.Context) error { return nil },
				"queue":    func(context.Context) error { return errors.New("queue closed") },
			},
			wantCode: http.StatusServiceUnavailable,
			wantOk:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthServer(":0", tt.checks)

			rec := httptest.NewRecorder()
			h.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)

			var report healthReport
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.Equal(t, tt.wantOk, report.Ok)
			assert.Len(t, report.Checks, len(tt.checks))
			if !tt.wantOk {
				assert.Equal(t, "queue closed", report.Checks["queue"])
			}
		})
	}
}

func TestHealthServer_methodNotAllowed(t *testing.T) {
	h := NewHealthServer(":0", nil)

	rec := httptest.NewRecorder()
	h.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
