package console

import (
	"context"
	"fmt"

	"github.com/h44z/sms-portal/internal/domain"
)

type ChromeState int

const (
	ChromeUnmounted ChromeState = iota
	ChromeMounted
)

func (s ChromeState) String() string {
	if s == ChromeMounted {
		return "mounted"
	}
	return "unmounted"
}

// MountFunc wires a freshly mounted page fragment.
type MountFunc func(ctx context.Context, view *View, page Fragment) error

// HeaderGate makes sure the shared chrome is mounted exactly once per page lifetime
// before any gated view is rendered.
type HeaderGate struct {
	display   Display
	fragments Fragments
	router    *Router
	mount     MountFunc

	state ChromeState
}

func NewHeaderGate(display Display, fragments Fragments, router *Router, mount MountFunc) *HeaderGate {
	return &HeaderGate{
		display:   display,
		fragments: fragments,
		router:    router,
		mount:     mount,
		state:     ChromeUnmounted,
	}
}

func (g *HeaderGate) State() ChromeState {
	return g.state
}

// Render shows the view. If the chrome is not mounted yet, it is mounted first and Render runs again.
func (g *HeaderGate) Render(ctx context.Context, user *domain.UserInfo, view *View) error {
	if user == nil {
		return domain.ErrNotAuthenticated
	}

	if g.state == ChromeUnmounted {
		header, err := g.fragments.Load(ctx, HeaderFragment)
		if err != nil {
			return fmt.Errorf("failed to load chrome: %w", err)
		}

		g.display.MountChrome(Chrome{
			Brand:    header.Title,
			Username: user.Username,
			Name:     user.Name,
			Nav:      g.router.NavFor(user),
		})
		g.state = ChromeMounted

		return g.Render(ctx, user, view)
	}

	g.display.ClearActive()
	g.display.SetActive(view.Key)
	g.display.SetTitle(view.Title)

	page, err := g.fragments.Load(ctx, view.Fragment)
	if err != nil {
		return fmt.Errorf("failed to load page %s: %w", view.Fragment, err)
	}
	g.display.MountPage(page)

	return g.mount(ctx, view, page)
}

// Reset ends the page lifetime, the chrome is mounted again on the next Render.
func (g *HeaderGate) Reset() {
	g.state = ChromeUnmounted
}
