package backend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/h44z/sms-portal/internal/domain"
)

type UserService struct {
	users UserDatabaseRepo
}

func NewUserService(users UserDatabaseRepo) *UserService {
	return &UserService{
		users: users,
	}
}

// Info returns the user of the current request.
func (s UserService) Info(ctx context.Context) (*domain.UserInfo, error) {
	user, err := s.users.GetUser(ctx, domain.GetUserInfo(ctx).Username)
	if err != nil {
		return nil, fmt.Errorf("unable to load user: %w", err)
	}

	return user.Info(), nil
}

func (s UserService) Filter(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	users, err := s.users.FindUsers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("unable to load users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}

	return users, nil
}

// Add creates a new user. A password is mandatory for new users.
func (s UserService) Add(ctx context.Context, req domain.UserRequest) error {
	if req.Password == "" {
		return domain.NewValidationError("Password", "Password is required.")
	}
	if err := checkPermissions(req.Permissions); err != nil {
		return err
	}

	user := &domain.User{
		Username:        req.Username,
		Password:        domain.PrivateString(req.Password),
		Name:            req.Name,
		Email:           req.Email,
		ConnectionGroup: req.ConnectionGroup,
		Permissions:     req.Permissions,
		RegisteredAt:    time.Now().Unix(),
		Suspended:       req.Suspended,
	}
	if err := user.HashPassword(); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err := s.users.CreateUser(ctx, user)
	if errors.Is(err, domain.ErrNotUnique) {
		return fail(domain.ErrNotUnique, "User %s already exists.", req.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", req.Username, err)
	}

	return nil
}

// Edit replaces the attributes of an existing user. The password is only changed if a new one is given.
func (s UserService) Edit(ctx context.Context, req domain.UserRequest) error {
	if err := checkPermissions(req.Permissions); err != nil {
		return err
	}

	err := s.users.SaveUser(ctx, req.Username, func(u *domain.User) (*domain.User, error) {
		u.Name = req.Name
		u.Email = req.Email
		u.ConnectionGroup = req.ConnectionGroup
		u.Permissions = req.Permissions
		u.Suspended = req.Suspended
		if req.Password != "" {
			u.Password = domain.PrivateString(req.Password)
			if err := u.HashPassword(); err != nil {
				return nil, fmt.Errorf("failed to hash password: %w", err)
			}
		}
		return u, nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return fail(domain.ErrNotFound, "Couldn't find user %s.", req.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", req.Username, err)
	}

	return nil
}

// Permissions returns all permissions that can be granted.
func (s UserService) Permissions(_ context.Context) []domain.Permission {
	return domain.AllPermissions()
}

func checkPermissions(perms []domain.Permission) error {
	all := domain.AllPermissions()
	for _, p := range perms {
		if !slices.Contains(all, p) {
			return domain.NewValidationError("Permissions", fmt.Sprintf("Unknown permission %q.", p))
		}
	}
	return nil
}
