package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_DrainWaitsForHandlers(t *testing.T) {
	bus := NewEventBus(10)
	release := make(chan struct{})
	var handled atomic.Int32

	require.NoError(t, bus.Subscribe(TopicSessionLogout, func(ev SessionEvent) {
		<-release
		handled.Add(1)
	}))

	bus.Publish(TopicSessionLogout, SessionEvent{Profile: "default", Username: "alice"})
	bus.Publish(TopicSessionLogout, SessionEvent{Profile: "default", Username: "alice"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, bus.Drain(ctx))

	close(release)
	require.NoError(t, bus.Drain(context.Background()))
	assert.EqualValues(t, 2, handled.Load())
}

func TestEventBus_UnsubscribeKeepsQueuedCalls(t *testing.T) {
	bus := NewEventBus(10)
	var handled atomic.Int32
	fn := func(ev RouteEvent) { handled.Add(1) }

	require.NoError(t, bus.Subscribe(TopicRouteChanged, fn))
	bus.Publish(TopicRouteChanged, RouteEvent{View: "campaign"})
	require.NoError(t, bus.Unsubscribe(TopicRouteChanged, fn))
	bus.Publish(TopicRouteChanged, RouteEvent{View: "reports"})

	require.NoError(t, bus.Drain(context.Background()))
	assert.EqualValues(t, 1, handled.Load())

	assert.Error(t, bus.Unsubscribe(TopicRouteChanged, fn))
}

func TestEventBus_NoSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	bus.Publish(TopicAuthLogin, SessionEvent{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, bus.Drain(ctx))
}
