package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/sms-portal/internal/app/api/core/request"
	"github.com/h44z/sms-portal/internal/app/api/core/respond"
	"github.com/h44z/sms-portal/internal/domain"
)

type ServicesService interface {
	Config(ctx context.Context) domain.ServiceConfig
	UpdateConfig(ctx context.Context, config domain.ServiceConfig) error
	Status(ctx context.Context) []domain.ServiceStatus
}

type ServicesEndpoint struct {
	authenticator AuthenticationHandler
	services      ServicesService
}

func NewServicesEndpoint(authenticator AuthenticationHandler, services ServicesService) ServicesEndpoint {
	return ServicesEndpoint{
		authenticator: authenticator,
		services:      services,
	}
}

func (e ServicesEndpoint) GetName() string {
	return "ServicesEndpoint"
}

func (e ServicesEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.With(e.authenticator.LoggedIn(domain.PermShowConfig)).HandleFunc("GET /services/config", e.handleConfigGet())
	g.With(e.authenticator.LoggedIn(domain.PermEditConfig)).HandleFunc("POST /services/config", e.handleConfigPost())
	g.With(e.authenticator.LoggedIn(domain.PermGetStatus)).HandleFunc("GET /services/status", e.handleStatusGet())
}

func (e ServicesEndpoint) handleConfigGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.Response(w, e.services.Config(r.Context()))
	}
}

// handleConfigPost expects the JSON body {"Token": ..., "Config": {...}}.
func (e ServicesEndpoint) handleConfigPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !request.IsJson(r) {
			respondError(w, domain.NewValidationError("Config", "Config must be sent as JSON."))
			return
		}

		var req domain.ServiceConfigRequest
		if err := request.BodyJson(r, &req); err != nil {
			respondError(w, domain.NewValidationError("Config", "Config is not valid JSON."))
			return
		}

		if err := e.services.UpdateConfig(r.Context(), req.Config); err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, "Configuration updated.")
	}
}

func (e ServicesEndpoint) handleStatusGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.Response(w, e.services.Status(r.Context()))
	}
}
