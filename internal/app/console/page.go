package console

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// Page is one mounted view. It is closed as soon as another view is mounted or the session ends,
// results arriving for a closed page are dropped.
type Page struct {
	view     *View
	fragment Fragment

	display     Display
	forms       FormSource
	validator   Validator
	interceptor *Interceptor

	closed atomic.Bool

	mu       sync.Mutex
	actions  map[string]func(ctx context.Context) error
	options  map[string]Options
	defaults map[string]Values
}

func newPage(view *View, fragment Fragment, display Display, forms FormSource, validator Validator,
	interceptor *Interceptor) *Page {
	return &Page{
		view:        view,
		fragment:    fragment,
		display:     display,
		forms:       forms,
		validator:   validator,
		interceptor: interceptor,
		actions:     make(map[string]func(ctx context.Context) error),
		options:     make(map[string]Options),
		defaults:    make(map[string]Values),
	}
}

func (p *Page) View() *View {
	return p.view
}

func (p *Page) Closed() bool {
	return p.closed.Load()
}

func (p *Page) close() {
	p.closed.Store(true)
}

// Mount replaces the content of a slot. Options are remembered to feed select fields.
func (p *Page) Mount(slot string, c Component) {
	if p.Closed() {
		slog.Debug("dropping content for closed page", "view", p.view.Key, "slot", slot)
		return
	}
	if opts, ok := c.(Options); ok {
		p.mu.Lock()
		p.options[slot] = opts
		p.mu.Unlock()
	}
	p.display.Mount(slot, c)
}

// Notify shows a confirmation unless the page is already gone.
func (p *Page) Notify(level NotifyLevel, msg string) {
	if p.Closed() {
		return
	}
	p.display.Notify(Notification{Level: level, Message: msg})
}

// Fail passes the error to the interceptor. Errors of closed pages are only logged.
func (p *Page) Fail(ctx context.Context, err error) {
	if p.Closed() {
		slog.Debug("dropping error for closed page", "view", p.view.Key, "error", err)
		return
	}
	p.interceptor.Handle(ctx, err)
}

// SetDefaults pre-fills the fields of a control for the next invocation.
func (p *Page) SetDefaults(control string, values Values) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaults[control] = values
}

// Register makes the action available under the name of its control.
func (p *Page) Register(control string, fn func(ctx context.Context) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions[control] = fn
}

// Actions returns the names of all registered actions.
func (p *Page) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.actions))
	for name := range p.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Page) run(ctx context.Context, control string) error {
	p.mu.Lock()
	fn, ok := p.actions[control]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, control)
	}
	return fn(ctx)
}

// collect asks the form source for the fields of the control, including select options and defaults.
func (p *Page) collect(ctx context.Context, control string) (Values, error) {
	spec, ok := p.fragment.Control(control)
	if !ok {
		spec = FormSpec{Name: control, Title: control}
	}

	p.mu.Lock()
	defaults := p.defaults[control]
	options := make(map[string]Options, len(p.options))
	for k, v := range p.options {
		options[k] = v
	}
	p.mu.Unlock()

	if defaults != nil {
		fields := make([]FormField, len(spec.Fields))
		copy(fields, spec.Fields)
		for i := range fields {
			if v, ok := defaults[fields[i].Name]; ok && len(v) > 0 {
				fields[i].Default = v[0]
				if fields[i].Kind == FieldMultiSelect {
					fields[i].Default = joinValues(v)
				}
			}
		}
		spec.Fields = fields
	}

	if len(spec.Fields) == 0 {
		return Values{}, nil
	}
	return p.forms.Collect(ctx, spec, options)
}
