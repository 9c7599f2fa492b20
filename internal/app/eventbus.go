package app

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	evbus "github.com/vardius/message-bus"
)

const TopicAuthLogin = "auth:login"
const TopicSessionLogout = "session:logout"
const TopicSessionExpired = "session:expired"
const TopicRouteChanged = "route:changed"

// SessionEvent is published on login, logout and session expiry.
type SessionEvent struct {
	Profile  string
	Username string
}

// RouteEvent is published whenever the console renders a gated view.
type RouteEvent struct {
	Profile  string
	Username string
	View     string
}

// EventBus is a message bus that keeps count of handler calls that were queued but have not finished yet.
// Drain uses that count to wait for asynchronous subscribers before shutdown.
type EventBus struct {
	bus evbus.MessageBus

	mu       sync.RWMutex
	handlers map[string][]trackedHandler
	pending  atomic.Int64
}

type trackedHandler struct {
	original reflect.Value
	wrapped  any
}

func NewEventBus(queueSize int) *EventBus {
	return &EventBus{
		bus:      evbus.New(queueSize),
		handlers: make(map[string][]trackedHandler),
	}
}

func (b *EventBus) Publish(topic string, args ...any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.pending.Add(int64(len(b.handlers[topic])))
	b.bus.Publish(topic, args...)
}

func (b *EventBus) Subscribe(topic string, fn any) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("%s is not a reflect.Func", reflect.TypeOf(fn))
	}

	wrapped := reflect.MakeFunc(fv.Type(), func(args []reflect.Value) []reflect.Value {
		defer b.pending.Add(-1)
		return fv.Call(args)
	}).Interface()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.bus.Subscribe(topic, wrapped); err != nil {
		return err
	}
	b.handlers[topic] = append(b.handlers[topic], trackedHandler{original: fv, wrapped: wrapped})
	return nil
}

// Unsubscribe removes fn from the topic. Calls already queued for fn still run.
func (b *EventBus) Unsubscribe(topic string, fn any) error {
	fv := reflect.ValueOf(fn)

	b.mu.Lock()
	defer b.mu.Unlock()

	handlers, ok := b.handlers[topic]
	if !ok {
		return fmt.Errorf("topic %s doesn't exist", topic)
	}
	for i, h := range handlers {
		if h.original != fv {
			continue
		}
		if err := b.bus.Unsubscribe(topic, h.wrapped); err != nil {
			return err
		}
		b.handlers[topic] = append(handlers[:i], handlers[i+1:]...)
		if len(b.handlers[topic]) == 0 {
			delete(b.handlers, topic)
		}
		return nil
	}
	return nil
}

func (b *EventBus) Close(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bus.Close(topic)
	delete(b.handlers, topic)
}

// Drain blocks until every queued handler call has finished or the context is done.
func (b *EventBus) Drain(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for b.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%d event handlers still running: %w", b.pending.Load(), ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}
