package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/h44z/sms-portal/internal/domain"
)

// LocationKey identifies a view, it is the part after "#!" in a location like "#!campaign".
type LocationKey string

// ParseLocation accepts "#!campaign", "#campaign" and "campaign" alike.
func ParseLocation(location string) LocationKey {
	location = strings.TrimSpace(location)
	location = strings.TrimPrefix(location, "#")
	location = strings.TrimPrefix(location, "!")
	return LocationKey(strings.ToLower(strings.TrimSpace(location)))
}

func (k LocationKey) String() string {
	return "#!" + string(k)
}

// View is a gated page of the console.
type View struct {
	Key      LocationKey
	Title    string
	Fragment string
	// Permission is required to list the view in the navigation. Empty means always listed.
	Permission domain.Permission
	// Wire loads the lists of the page and registers its actions.
	Wire func(ctx context.Context, p *Page) error
}

// Router maps location keys to views. The table is fixed after construction.
type Router struct {
	routes      map[LocationKey]*View
	order       []*View
	defaultView *View
}

func NewRouter(defaultKey LocationKey, views ...*View) (*Router, error) {
	r := &Router{
		routes: make(map[LocationKey]*View, len(views)),
		order:  make([]*View, 0, len(views)),
	}

	for _, v := range views {
		if v.Key == "" {
			return nil, fmt.Errorf("view %q has no location key", v.Title)
		}
		if _, exists := r.routes[v.Key]; exists {
			return nil, fmt.Errorf("duplicate view %s", v.Key)
		}
		if v.Fragment == "" {
			v.Fragment = string(v.Key)
		}
		r.routes[v.Key] = v
		r.order = append(r.order, v)
	}

	def, ok := r.routes[defaultKey]
	if !ok {
		return nil, fmt.Errorf("default view %s is not registered", defaultKey)
	}
	r.defaultView = def

	return r, nil
}

// Resolve returns the view for the key, or the default view if the key is unknown.
func (r *Router) Resolve(key LocationKey) *View {
	if v, ok := r.routes[key]; ok {
		return v
	}
	return r.defaultView
}

func (r *Router) Default() *View {
	return r.defaultView
}

// Views returns all views in registration order.
func (r *Router) Views() []*View {
	return r.order
}

// NavFor returns the navigation entries the user may see.
func (r *Router) NavFor(user *domain.UserInfo) []NavEntry {
	nav := make([]NavEntry, 0, len(r.order))
	for _, v := range r.order {
		if !user.Can(v.Permission) {
			continue
		}
		nav = append(nav, NavEntry{Key: v.Key, Title: v.Title})
	}
	return nav
}
