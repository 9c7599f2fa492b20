package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckWebEndpoint(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()
	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer unhealthy.Close()

	assert.NoError(t, checkWebEndpoint(healthy.URL, time.Second))
	assert.EqualError(t, checkWebEndpoint(unhealthy.URL, time.Second), "unhealthy: 503 Service Unavailable")
	assert.Error(t, checkWebEndpoint("http://127.0.0.1:1/health", time.Second))
}
