package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	evbus "github.com/vardius/message-bus"

	"github.com/h44z/sms-portal/internal/app"
	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

// Recorder stores console activity published on the message bus.
type Recorder struct {
	cfg *config.Config
	bus evbus.MessageBus

	db DatabaseRepo

	subscriptions map[string]any
}

// drainer is implemented by buses that can wait for queued handler calls.
type drainer interface {
	Drain(ctx context.Context) error
}

func NewActivityRecorder(cfg *config.Config, bus evbus.MessageBus, db DatabaseRepo) (*Recorder, error) {
	r := &Recorder{
		cfg: cfg,
		bus: bus,

		db: db,
	}

	err := r.connectToMessageBus()
	if err != nil {
		return nil, fmt.Errorf("failed to setup message bus: %w", err)
	}

	return r, nil
}

func (r *Recorder) connectToMessageBus() error {
	if !r.cfg.Advanced.RecordActivity {
		return nil // noting to do
	}

	r.subscriptions = map[string]any{
		app.TopicAuthLogin:      r.handleAuthLoginEvent,
		app.TopicSessionLogout:  r.handleLogoutEvent,
		app.TopicSessionExpired: r.handleExpiredEvent,
		app.TopicRouteChanged:   r.handleRouteEvent,
	}
	for topic, fn := range r.subscriptions {
		if err := r.bus.Subscribe(topic, fn); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
	}

	return nil
}

// Close waits until queued activity events are stored and detaches the recorder from the message bus.
func (r *Recorder) Close(ctx context.Context) error {
	if len(r.subscriptions) == 0 {
		return nil
	}

	var drainErr error
	if d, ok := r.bus.(drainer); ok {
		drainErr = d.Drain(ctx)
	}
	for topic, fn := range r.subscriptions {
		if err := r.bus.Unsubscribe(topic, fn); err != nil {
			slog.Warn("failed to unsubscribe activity recorder", "topic", topic, "error", err)
		}
	}
	r.subscriptions = nil

	if drainErr != nil {
		return fmt.Errorf("failed to store pending activity: %w", drainErr)
	}
	return nil
}

func (r *Recorder) handleAuthLoginEvent(ev app.SessionEvent) {
	r.save(ev.Profile, domain.ActivityLogin, ev.Username, fmt.Sprintf("user %s logged in", ev.Username))
}

func (r *Recorder) handleLogoutEvent(ev app.SessionEvent) {
	r.save(ev.Profile, domain.ActivityLogout, ev.Username, fmt.Sprintf("user %s logged out", ev.Username))
}

func (r *Recorder) handleExpiredEvent(ev app.SessionEvent) {
	r.save(ev.Profile, domain.ActivitySessionExpired, ev.Username, "session token rejected by gateway")
}

func (r *Recorder) handleRouteEvent(ev app.RouteEvent) {
	r.save(ev.Profile, domain.ActivityNavigate, ev.Username, "opened view "+ev.View)
}

func (r *Recorder) save(profile string, kind domain.ActivityKind, username, msg string) {
	err := r.db.SaveActivityEntry(context.Background(), &domain.ActivityEntry{
		CreatedAt: time.Now(),
		Profile:   profile,
		Kind:      kind,
		Username:  username,
		Message:   msg,
	})
	if err != nil {
		slog.Error("failed to store activity entry", "kind", kind, "error", err)
	}
}
