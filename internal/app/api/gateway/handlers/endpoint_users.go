package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/sms-portal/internal/app/api/core/request"
	"github.com/h44z/sms-portal/internal/app/api/core/respond"
	"github.com/h44z/sms-portal/internal/domain"
)

type UserService interface {
	Filter(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	Add(ctx context.Context, req domain.UserRequest) error
	Edit(ctx context.Context, req domain.UserRequest) error
	Permissions(ctx context.Context) []domain.Permission
}

type UsersEndpoint struct {
	authenticator AuthenticationHandler
	validator     Validator
	users         UserService
}

func NewUsersEndpoint(authenticator AuthenticationHandler, validator Validator, users UserService) UsersEndpoint {
	return UsersEndpoint{
		authenticator: authenticator,
		validator:     validator,
		users:         users,
	}
}

func (e UsersEndpoint) GetName() string {
	return "UsersEndpoint"
}

func (e UsersEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.With(e.authenticator.LoggedIn(domain.PermListUsers)).HandleFunc("GET /users", e.handleFilterGet())
	g.With(e.authenticator.LoggedIn(domain.PermAddUsers)).HandleFunc("POST /users/add",
		e.handleChangePost(e.users.Add, "User added."))
	g.With(e.authenticator.LoggedIn(domain.PermEditUsers)).HandleFunc("POST /users/edit",
		e.handleChangePost(e.users.Edit, "User updated."))
	g.With(e.authenticator.LoggedIn()).HandleFunc("GET /users/permissions", e.handlePermissionsGet())
}

func (e UsersEndpoint) handleFilterGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseUserFilter(r)
		if err == nil {
			err = validate(e.validator, filter)
		}
		if err != nil {
			respondError(w, err)
			return
		}

		users, err := e.users.Filter(r.Context(), filter)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, domain.UserList{Users: users})
	}
}

func (e UsersEndpoint) handleChangePost(
	change func(ctx context.Context, req domain.UserRequest) error,
	done string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := parseUserRequest(r)
		if err := validate(e.validator, req); err != nil {
			respondError(w, err)
			return
		}

		if err := change(r.Context(), req); err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, done)
	}
}

func (e UsersEndpoint) handlePermissionsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.Response(w, e.users.Permissions(r.Context()))
	}
}

func parseUserRequest(r *http.Request) domain.UserRequest {
	req := domain.UserRequest{
		Username:        request.Param(r, "Username"),
		Password:        request.ParamRaw(r, "Password"),
		Name:            request.Param(r, "Name"),
		Email:           request.Param(r, "Email"),
		ConnectionGroup: request.Param(r, "ConnectionGroup"),
		Suspended:       request.ParamBool(r, "Suspended"),
	}
	for _, p := range request.ParamSlice(r, "Permissions") {
		req.Permissions = append(req.Permissions, domain.Permission(p))
	}
	return req
}

func parseUserFilter(r *http.Request) (domain.UserFilter, error) {
	filter := domain.UserFilter{
		Username:        request.Param(r, "Username"),
		Email:           request.Param(r, "Email"),
		Name:            request.Param(r, "Name"),
		ConnectionGroup: request.Param(r, "ConnectionGroup"),
		Suspended:       request.ParamBool(r, "Suspended"),
		OrderByKey:      request.Param(r, "OrderByKey"),
		OrderByDir:      request.Param(r, "OrderByDir"),
		From:            request.Param(r, "From"),
	}
	for _, p := range request.ParamSlice(r, "Permissions") {
		filter.Permissions = append(filter.Permissions, domain.Permission(p))
	}

	var err error
	if filter.RegisteredAfter, err = request.ParamInt(r, "RegisteredAfter"); err != nil {
		return filter, paramError("RegisteredAfter", err)
	}
	if filter.RegisteredBefore, err = request.ParamInt(r, "RegisteredBefore"); err != nil {
		return filter, paramError("RegisteredBefore", err)
	}
	perPage, err := request.ParamInt(r, "PerPage")
	if err != nil {
		return filter, paramError("PerPage", err)
	}
	filter.PerPage = int(perPage)

	return filter, nil
}
