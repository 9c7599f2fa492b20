package adapters

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	evbus "github.com/vardius/message-bus"

	"github.com/h44z/sms-portal/internal/app"
)

func TestMetricsServer_Observe(t *testing.T) {
	m := NewMetricsServer(":0")

	m.ObserveRequest("/api/campaign/filter", 200, 20*time.Millisecond)
	m.ObserveRequest("/api/campaign/filter", 200, 30*time.Millisecond)
	m.ObserveRequest("/api/campaign/filter", 401, 10*time.Millisecond)
	m.ObserveRender("campaign")
	m.ObserveServerRequest("/api/user/auth", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.apiRequestsTotal.WithLabelValues("/api/campaign/filter", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequestsTotal.WithLabelValues("/api/campaign/filter", "401")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.viewRendersTotal.WithLabelValues("campaign")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.serverRequestsTotal.WithLabelValues("/api/user/auth", "200")))
}

func TestMetricsServer_SessionEvents(t *testing.T) {
	m := NewMetricsServer(":0")
	bus := evbus.New(10)
	require.NoError(t, m.ConnectToMessageBus(bus))

	bus.Publish(app.TopicAuthLogin, app.SessionEvent{Profile: "default", Username: "alice"})
	bus.Publish(app.TopicSessionExpired, app.SessionEvent{Profile: "default", Username: "alice"})
	bus.Publish(app.TopicSessionExpired, app.SessionEvent{Profile: "default", Username: "alice"})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.sessionEventsTotal.WithLabelValues("expired")) == 2 &&
			testutil.ToFloat64(m.sessionEventsTotal.WithLabelValues("login")) == 1
	}, time.Second, 10*time.Millisecond)
}
