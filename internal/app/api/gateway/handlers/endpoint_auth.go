package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/sms-portal/internal/app/api/core/request"
	"github.com/h44z/sms-portal/internal/app/api/core/respond"
	"github.com/h44z/sms-portal/internal/domain"
)

type LoginService interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type UserInfoService interface {
	Info(ctx context.Context) (*domain.UserInfo, error)
}

type AuthEndpoint struct {
	authenticator AuthenticationHandler
	validator     Validator
	logins        LoginService
	users         UserInfoService
}

func NewAuthEndpoint(
	authenticator AuthenticationHandler,
	validator Validator,
	logins LoginService,
	users UserInfoService,
) AuthEndpoint {
	return AuthEndpoint{
		authenticator: authenticator,
		validator:     validator,
		logins:        logins,
		users:         users,
	}
}

func (e AuthEndpoint) GetName() string {
	return "AuthEndpoint"
}

func (e AuthEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.HandleFunc("POST /user/auth", e.handleAuthPost())
	g.With(e.authenticator.LoggedIn()).HandleFunc("GET /user/info", e.handleInfoGet())
}

// handleAuthPost exchanges username and password for a token.
func (e AuthEndpoint) handleAuthPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := domain.LoginRequest{
			Username: request.Param(r, "Username"),
			Password: request.ParamRaw(r, "Password"),
		}
		if err := validate(e.validator, req); err != nil {
			respondError(w, err)
			return
		}

		token, err := e.logins.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, domain.LoginResponse{Token: token})
	}
}

func (e AuthEndpoint) handleInfoGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := e.users.Info(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, info)
	}
}
