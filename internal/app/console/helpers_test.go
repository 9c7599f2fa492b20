package console

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	evbus "github.com/vardius/message-bus"

	"github.com/h44z/sms-portal/internal/app/gateway"
	"github.com/h44z/sms-portal/internal/app/session"
	"github.com/h44z/sms-portal/internal/config"
)

const allPermissionsUserInfo = `{"Response":{"Username":"alice","Name":"Alice","Permissions":[
	"Send message","List messages","List campaigns","Start a campaign","Stop campaign","Retry campaign",
	"List number files","Delete a number file","List users","Add users","Edit users",
	"Show config","Edit config","Get status of services"]}}`

// fakeGateway answers gateway requests by path and counts them.
type fakeGateway struct {
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	calls    map[string]int
	requests map[string][]*http.Request
	srv      *httptest.Server
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	f := &fakeGateway{
		handlers: make(map[string]http.HandlerFunc),
		calls:    make(map[string]int),
		requests: make(map[string][]*http.Request),
	}
	f.respond(gateway.PathAuth, http.StatusOK, `{"Response":{"Token":"abc"}}`)
	f.respond(gateway.PathUserInfo, http.StatusOK, allPermissionsUserInfo)
	f.respond(gateway.PathMessageFilter, http.StatusOK, `{"Response":[]}`)
	f.respond(gateway.PathCampaignFilter, http.StatusOK, `{"Response":[]}`)
	f.respond(gateway.PathFileFilter, http.StatusOK, `{"Response":[]}`)
	f.respond(gateway.PathUsers, http.StatusOK, `{"Response":{"Users":[]}}`)
	f.respond(gateway.PathUsersPermission, http.StatusOK, `{"Response":[]}`)
	f.respond(gateway.PathServicesStatus, http.StatusOK, `{"Response":[]}`)

	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGateway) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseMultipartForm(1 << 20)
	if r.Form == nil {
		_ = r.ParseForm()
	}

	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.requests[r.URL.Path] = append(f.requests[r.URL.Path], r)
	h, ok := f.handlers[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (f *fakeGateway) respond(path string, status int, body string) {
	f.handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (f *fakeGateway) handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = h
}

func (f *fakeGateway) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeGateway) lastRequest(path string) *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := f.requests[path]
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1]
}

type busyEvent struct {
	control string
	busy    bool
}

// recordingDisplay keeps every call for later inspection.
type recordingDisplay struct {
	mu      sync.Mutex
	logins  []string
	chromes []Chrome
	active  LocationKey
	titles  []string
	pages   []string
	mounts  map[string][]Component
	busy    []busyEvent
	notes   []Notification
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{mounts: make(map[string][]Component)}
}

func (d *recordingDisplay) ShowLogin(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logins = append(d.logins, reason)
}

func (d *recordingDisplay) MountChrome(chrome Chrome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chromes = append(d.chromes, chrome)
}

func (d *recordingDisplay) ClearActive() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = ""
}

func (d *recordingDisplay) SetActive(key LocationKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = key
}

func (d *recordingDisplay) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.titles = append(d.titles, title)
}

func (d *recordingDisplay) MountPage(page Fragment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pages = append(d.pages, page.Name)
}

func (d *recordingDisplay) Mount(slot string, c Component) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mounts[slot] = append(d.mounts[slot], c)
}

func (d *recordingDisplay) SetBusy(control string, busy bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.busy = append(d.busy, busyEvent{control: control, busy: busy})
}

func (d *recordingDisplay) Notify(n Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes = append(d.notes, n)
}

func (d *recordingDisplay) errorMessages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var msgs []string
	for _, n := range d.notes {
		if n.Level == NotifyError {
			msgs = append(msgs, n.Message)
		}
	}
	return msgs
}

func (d *recordingDisplay) successMessages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var msgs []string
	for _, n := range d.notes {
		if n.Level == NotifySuccess {
			msgs = append(msgs, n.Message)
		}
	}
	return msgs
}

func (d *recordingDisplay) activeView() LocationKey {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

func (d *recordingDisplay) lastMount(slot string) Component {
	d.mu.Lock()
	defer d.mu.Unlock()
	mounts := d.mounts[slot]
	if len(mounts) == 0 {
		return nil
	}
	return mounts[len(mounts)-1]
}

// scriptedForms answers every form with preset values. Unknown controls are cancelled.
type scriptedForms struct {
	mu     sync.Mutex
	values map[string]Values
	specs  []FormSpec
}

func (s *scriptedForms) set(control string, values Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]Values)
	}
	s.values[control] = values
}

func (s *scriptedForms) Collect(_ context.Context, form FormSpec, _ map[string]Options) (Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs = append(s.specs, form)
	v, ok := s.values[form.Name]
	if !ok {
		return nil, ErrFormCancelled
	}
	return v, nil
}

// countingFragments counts the loads of each fragment.
type countingFragments struct {
	inner Fragments
	mu    sync.Mutex
	loads map[string]int
}

func (c *countingFragments) Load(ctx context.Context, name string) (Fragment, error) {
	c.mu.Lock()
	if c.loads == nil {
		c.loads = make(map[string]int)
	}
	c.loads[name]++
	c.mu.Unlock()
	return c.inner.Load(ctx, name)
}

func (c *countingFragments) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads[name]
}

type testEnv struct {
	shell     *Shell
	gw        *fakeGateway
	display   *recordingDisplay
	forms     *scriptedForms
	store     *session.Store
	fragments *countingFragments
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gw := newFakeGateway(t)
	cfg := &config.Config{}
	cfg.Gateway.BaseUrl = gw.srv.URL
	cfg.Console.DefaultView = "message"
	cfg.Console.PageSize = 25
	cfg.Console.ExportDir = t.TempDir()

	bus := evbus.New(100)
	store := session.NewStore("default", session.NewMemoryRepo(), bus)
	client := gateway.NewClient(&cfg.Gateway, store)
	display := newRecordingDisplay()
	forms := &scriptedForms{}
	fragments := &countingFragments{inner: NewEmbeddedFragments()}

	shell, err := NewShell(cfg, store, client, bus, display, forms, WithFragments(fragments))
	require.NoError(t, err)

	return &testEnv{
		shell:     shell,
		gw:        gw,
		display:   display,
		forms:     forms,
		store:     store,
		fragments: fragments,
	}
}

// login stores a token and opens the console at the given location.
func (e *testEnv) login(t *testing.T, location string) {
	t.Helper()
	require.NoError(t, e.store.SetToken(context.Background(), "abc"))
	require.NoError(t, e.shell.Start(context.Background(), location))
	require.True(t, e.shell.Authenticated())
}

func tableRows(c Component) [][]string {
	if t, ok := c.(Table); ok {
		return t.Rows
	}
	return nil
}

func containsAny(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}
