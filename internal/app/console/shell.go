package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	evbus "github.com/vardius/message-bus"

	"github.com/h44z/sms-portal/internal/app"
	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

var ErrUnknownAction = errors.New("unknown action")

// SessionStore is the token storage of the console profile.
type SessionStore interface {
	Profile() string
	Token(ctx context.Context) (string, bool)
	SetToken(ctx context.Context, token string) error
	SetUsername(username string)
	Logout(ctx context.Context) error
	Expire(ctx context.Context) error
}

// Gateway is the SMS gateway REST API.
type Gateway interface {
	Authenticate(ctx context.Context, req domain.LoginRequest) (string, error)
	UserInfo(ctx context.Context) (*domain.UserInfo, error)

	SendMessage(ctx context.Context, req domain.MessageRequest) (string, error)
	FilterMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error)
	ExportMessages(ctx context.Context, filter domain.MessageFilter, w io.Writer) (int64, error)

	CreateCampaign(ctx context.Context, req domain.CampaignRequest) (string, error)
	FilterCampaigns(ctx context.Context) ([]domain.Campaign, error)
	StopCampaign(ctx context.Context, action domain.CampaignAction) (domain.CountResponse, error)
	RetryCampaign(ctx context.Context, action domain.CampaignAction) (domain.CountResponse, error)
	CampaignReport(ctx context.Context, action domain.CampaignAction) (*domain.CampaignReport, error)

	UploadFile(ctx context.Context, upload domain.FileUpload) (string, error)
	FilterFiles(ctx context.Context) ([]domain.NumFile, error)
	DeleteFile(ctx context.Context, action domain.FileAction) error

	FilterUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	FindUser(ctx context.Context, username string) (*domain.User, error)
	AddUser(ctx context.Context, req domain.UserRequest) error
	EditUser(ctx context.Context, req domain.UserRequest) error
	Permissions(ctx context.Context) ([]domain.Permission, error)

	ServiceConfig(ctx context.Context) (domain.ServiceConfig, error)
	UpdateServiceConfig(ctx context.Context, cfg domain.ServiceConfig) error
	ServiceStatus(ctx context.Context) ([]domain.ServiceStatus, error)
}

// RenderObserver is notified about every rendered view.
type RenderObserver interface {
	ObserveRender(view string)
}

type ShellOption func(*Shell)

func WithFragments(f Fragments) ShellOption {
	return func(s *Shell) {
		s.fragments = f
	}
}

func WithValidator(v Validator) ShellOption {
	return func(s *Shell) {
		s.validator = v
	}
}

func WithRenderObserver(o RenderObserver) ShellOption {
	return func(s *Shell) {
		s.observer = o
	}
}

// Shell owns the page lifetime of the console: the location, the user, the chrome and the mounted page.
// All exported methods are serialized.
type Shell struct {
	cfg       *config.Config
	session   SessionStore
	gw        Gateway
	bus       evbus.MessageBus
	display   Display
	forms     FormSource
	fragments Fragments
	validator Validator
	observer  RenderObserver

	router      *Router
	gate        *HeaderGate
	interceptor *Interceptor

	mu       sync.Mutex
	location LocationKey
	user     *domain.UserInfo
	page     *Page
}

func NewShell(
	cfg *config.Config,
	session SessionStore,
	gw Gateway,
	bus evbus.MessageBus,
	display Display,
	forms FormSource,
	opts ...ShellOption,
) (*Shell, error) {
	s := &Shell{
		cfg:     cfg,
		session: session,
		gw:      gw,
		bus:     bus,
		display: display,
		forms:   forms,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fragments == nil {
		s.fragments = NewEmbeddedFragments()
	}
	if s.validator == nil {
		s.validator = NewValidator()
	}

	router, err := NewRouter(ParseLocation(cfg.Console.DefaultView), s.views()...)
	if err != nil {
		return nil, err
	}
	s.router = router
	s.gate = NewHeaderGate(display, s.fragments, router, s.mountPage)
	s.interceptor = NewInterceptor(display, s.expire)

	return s, nil
}

// Start opens the console at the given location, either with the stored session or on the login view.
func (s *Shell) Start(ctx context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.location = ParseLocation(location)
	if _, ok := s.session.Token(ctx); !ok {
		s.display.ShowLogin("")
		return nil
	}

	return s.enter(ctx)
}

// Login authenticates against the gateway and renders the current location.
func (s *Shell) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := domain.LoginRequest{Username: username, Password: password}
	if err := validatePayload(s.validator, req); err != nil {
		s.interceptor.Handle(ctx, err)
		return err
	}

	token, err := s.gw.Authenticate(ctx, req)
	if err != nil {
		s.loginFailed(ctx, err)
		return err
	}
	if err := s.session.SetToken(ctx, token); err != nil {
		s.interceptor.Handle(ctx, err)
		return err
	}
	s.session.SetUsername(username)
	s.bus.Publish(app.TopicAuthLogin, app.SessionEvent{Profile: s.session.Profile(), Username: username})

	return s.enter(ctx)
}

// loginFailed reports rejected credentials. Unlike other calls, a 401 of the login itself does not
// end anything, there is no session yet.
func (s *Shell) loginFailed(ctx context.Context, err error) {
	var apiErr *domain.ApiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		if len(apiErr.Errors) == 0 {
			s.display.Notify(Notification{Level: NotifyError, Message: "Invalid username or password."})
		}
		for _, fe := range apiErr.Errors {
			s.display.Notify(Notification{Level: NotifyError, Message: fe.Message})
		}
		s.display.ShowLogin("")
		return
	}
	s.interceptor.Handle(ctx, err)
	s.display.ShowLogin("")
}

// Navigate changes the location and renders the resolved view. Without session the login view is
// shown and the location is kept for after the login.
func (s *Shell) Navigate(ctx context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.location = ParseLocation(location)
	if s.user == nil {
		if _, ok := s.session.Token(ctx); !ok {
			s.display.ShowLogin("")
			return nil
		}
		return s.enter(ctx)
	}

	return s.render(ctx)
}

// Do runs an action of the mounted page.
func (s *Shell) Do(ctx context.Context, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		s.display.ShowLogin("")
		return domain.ErrNotAuthenticated
	}
	return s.page.run(ctx, action)
}

// Logout ends the session and shows the login view.
func (s *Shell) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.session.Logout(ctx)
	s.resetPageLifetime()
	s.display.ShowLogin("")

	return err
}

// Authenticated returns true if a user is loaded in the current page lifetime.
func (s *Shell) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *Shell) Location() LocationKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// User returns a copy of the loaded user, nil if no user is loaded.
func (s *Shell) User() *domain.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Actions returns the actions of the mounted page.
func (s *Shell) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return nil
	}
	return s.page.Actions()
}

// Views returns the navigation entries of the current user.
func (s *Shell) Views() []NavEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	return s.router.NavFor(s.user)
}

// enter fetches the user of the stored token and renders the current location.
func (s *Shell) enter(ctx context.Context) error {
	info, err := s.gw.UserInfo(ctx)
	if err != nil {
		if !s.interceptor.Handle(ctx, err) {
			s.display.ShowLogin("")
		}
		return err
	}

	s.user = info
	s.session.SetUsername(info.Username)
	slog.Debug("user info loaded", "username", info.Username, "permissions", len(info.Permissions))

	return s.render(ctx)
}

func (s *Shell) render(ctx context.Context) error {
	view := s.router.Resolve(s.location)
	if s.page != nil {
		s.page.close()
		s.page = nil
	}

	if err := s.gate.Render(ctx, s.user, view); err != nil {
		s.interceptor.Handle(ctx, err)
		return err
	}

	if s.user != nil { // the page may have ended the session while loading
		s.bus.Publish(app.TopicRouteChanged, app.RouteEvent{
			Profile:  s.session.Profile(),
			Username: s.user.Username,
			View:     string(view.Key),
		})
		if s.observer != nil {
			s.observer.ObserveRender(string(view.Key))
		}
	}

	return nil
}

// mountPage is invoked by the header gate once the page fragment is mounted.
func (s *Shell) mountPage(ctx context.Context, view *View, fragment Fragment) error {
	page := newPage(view, fragment, s.display, s.forms, s.validator, s.interceptor)
	s.page = page

	if view.Wire == nil {
		return nil
	}
	return view.Wire(ctx, page)
}

// expire is called by the interceptor for every 401 response.
func (s *Shell) expire(ctx context.Context) {
	if err := s.session.Expire(ctx); err != nil {
		slog.Error("failed to clear expired session", "error", err)
	}
	s.resetPageLifetime()
	s.display.ShowLogin("Your session has expired, please log in again.")
}

func (s *Shell) resetPageLifetime() {
	if s.page != nil {
		s.page.close()
		s.page = nil
	}
	s.user = nil
	s.gate.Reset()
}
