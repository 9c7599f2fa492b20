package console

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/h44z/sms-portal/internal/domain"
)

type userLookup struct {
	Username string `validate:"required"`
}

func (s *Shell) wireUsersView(ctx context.Context, p *Page) error {
	users := NewListView(p, "users", s.gw.FilterUsers, renderUsers)
	permissions := NewListView(p, "permission-select", ignoreFilter(s.gw.Permissions), renderPermissionOptions)

	var mu sync.Mutex
	current := domain.UserFilter{PerPage: s.pageSize()}
	currentFilter := func() domain.UserFilter {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	NewFormAction(p, "filter",
		func(values Values) (domain.UserFilter, error) {
			return domain.UserFilter{
				Username:        trimmed(values, "Username"),
				Name:            trimmed(values, "Name"),
				Email:           trimmed(values, "Email"),
				ConnectionGroup: trimmed(values, "ConnectionGroup"),
				Suspended:       parseBool(values, "Suspended"),
				PerPage:         s.pageSize(),
			}, nil
		},
		users.FilterSubmit(func(filter domain.UserFilter) {
			mu.Lock()
			current = filter
			mu.Unlock()
		}, "Users filtered."),
	).Register()

	NewFormAction(p, "find",
		func(values Values) (userLookup, error) {
			return userLookup{Username: trimmed(values, "Username")}, nil
		},
		func(ctx context.Context, req userLookup) (string, error) {
			user, err := s.gw.FindUser(ctx, req.Username)
			if errors.Is(err, domain.ErrNotFound) {
				return "", domain.NewValidationError("Username", "Couldn't find user.")
			}
			if err != nil {
				return "", err
			}
			p.Mount("user", renderUser(user))
			p.SetDefaults("edit", userValues(user))
			return "User found", nil
		},
	).Register()

	NewFormAction(p, "add",
		func(values Values) (domain.UserRequest, error) {
			req := buildUserRequest(values)
			if req.Password == "" {
				return req, domain.NewValidationError("Password", "Password is required.")
			}
			return req, nil
		},
		func(ctx context.Context, req domain.UserRequest) (string, error) {
			if err := s.gw.AddUser(ctx, req); err != nil {
				return "", err
			}
			return "User added.", nil
		},
		users.Refresher(currentFilter),
	).Register()

	NewFormAction(p, "edit",
		func(values Values) (domain.UserRequest, error) {
			return buildUserRequest(values), nil
		},
		func(ctx context.Context, req domain.UserRequest) (string, error) {
			if err := s.gw.EditUser(ctx, req); err != nil {
				return "", err
			}
			return "User updated.", nil
		},
		users.Refresher(currentFilter),
	).Register()

	_ = users.Refresh(ctx, currentFilter())
	_ = permissions.Refresh(ctx, noFilter())
	return nil
}

func buildUserRequest(values Values) domain.UserRequest {
	perms := multi(values, "Permissions")
	req := domain.UserRequest{
		Username:        trimmed(values, "Username"),
		Password:        values.Get("Password"),
		Name:            trimmed(values, "Name"),
		Email:           trimmed(values, "Email"),
		ConnectionGroup: trimmed(values, "ConnectionGroup"),
		Suspended:       parseBool(values, "Suspended"),
		Permissions:     make([]domain.Permission, 0, len(perms)),
	}
	for _, perm := range perms {
		req.Permissions = append(req.Permissions, domain.Permission(perm))
	}
	return req
}

func userValues(u *domain.User) Values {
	v := Values{
		"Username":        {u.Username},
		"Name":            {u.Name},
		"Email":           {u.Email},
		"ConnectionGroup": {u.ConnectionGroup},
		"Suspended":       {strconv.FormatBool(u.Suspended)},
	}
	for _, p := range u.Permissions {
		v.Add("Permissions", string(p))
	}
	return v
}

func permissionStrings(perms []domain.Permission) []string {
	result := make([]string, len(perms))
	for i, p := range perms {
		result[i] = string(p)
	}
	return result
}

func renderUsers(users []domain.User) Component {
	t := Table{
		Columns: []string{"Username", "Name", "Email", "Group", "Registered", "Suspended", "Permissions"},
		Empty:   "No users found.",
	}
	for _, u := range users {
		t.Rows = append(t.Rows, []string{
			u.Username,
			u.Name,
			u.Email,
			u.ConnectionGroup,
			domain.FormatUnix(u.RegisteredAt),
			strconv.FormatBool(u.Suspended),
			strings.Join(permissionStrings(u.Permissions), ", "),
		})
	}
	return t
}

func renderUser(u *domain.User) Component {
	return Details{
		Title: u.Username,
		Items: []DetailItem{
			{Label: "Name", Value: u.Name},
			{Label: "Email", Value: u.Email},
			{Label: "Connection group", Value: u.ConnectionGroup},
			{Label: "Registered", Value: domain.FormatUnix(u.RegisteredAt)},
			{Label: "Suspended", Value: strconv.FormatBool(u.Suspended)},
			{Label: "Permissions", Value: strings.Join(permissionStrings(u.Permissions), ", ")},
		},
	}
}

func renderPermissionOptions(perms []domain.Permission) Component {
	opts := Options{}
	for _, p := range perms {
		opts.Items = append(opts.Items, Option{Value: string(p), Label: string(p)})
	}
	return opts
}
