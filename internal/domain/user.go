package domain

import (
	"errors"
	"net/url"
	"slices"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// Permission grants a gateway user access to an operation.
type Permission string

const (
	PermAddUsers      Permission = "Add users"
	PermEditUsers     Permission = "Edit users"
	PermListUsers     Permission = "List users"
	PermShowConfig    Permission = "Show config"
	PermEditConfig    Permission = "Edit config"
	PermSendMessage   Permission = "Send message"
	PermListMessages  Permission = "List messages"
	PermListNumFiles  Permission = "List number files"
	PermDeleteNumFile Permission = "Delete a number file"
	PermListCampaigns Permission = "List campaigns"
	PermStartCampaign Permission = "Start a campaign"
	PermStopCampaign  Permission = "Stop campaign"
	PermRetryCampaign Permission = "Retry campaign"
	PermGetStatus     Permission = "Get status of services"
)

// AllPermissions returns every permission a gateway user can be granted.
func AllPermissions() []Permission {
	return []Permission{
		PermAddUsers,
		PermEditUsers,
		PermListUsers,
		PermShowConfig,
		PermEditConfig,
		PermSendMessage,
		PermListMessages,
		PermListNumFiles,
		PermDeleteNumFile,
		PermListCampaigns,
		PermStartCampaign,
		PermStopCampaign,
		PermRetryCampaign,
		PermGetStatus,
	}
}

// UserInfo describes the user owning the current session token.
type UserInfo struct {
	Username    string
	Name        string
	Email       string
	Permissions []Permission
}

// Can returns true if the user holds the given permission. An empty permission is always granted.
func (u *UserInfo) Can(p Permission) bool {
	if u == nil {
		return false
	}
	if p == "" {
		return true
	}
	return slices.Contains(u.Permissions, p)
}

// DisplayName returns the name of the user, or the username if no name is set.
func (u *UserInfo) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

type User struct {
	Username        string        `gorm:"primaryKey;column:username"`
	Password        PrivateString `json:"-" gorm:"column:password"` // bcrypt hash, only set on the gateway side
	Name            string        `gorm:"column:name"`
	Email           string        `gorm:"column:email;index:idx_user_email"`
	ConnectionGroup string        `gorm:"column:connection_group"`
	Permissions     []Permission  `gorm:"column:permissions;serializer:json"`
	RegisteredAt    int64         `gorm:"column:registered_at"`
	Suspended       bool          `gorm:"column:suspended"`
}

// CheckPassword compares the given password with the stored bcrypt hash.
func (u *User) CheckPassword(password string) error {
	if u.Password == "" {
		return errors.New("empty user password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return errors.New("wrong password")
	}

	return nil
}

// HashPassword replaces a plain text password with its bcrypt hash. Hashed passwords are left as is.
func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil // nothing to hash
	}

	if _, err := bcrypt.Cost([]byte(u.Password)); err == nil {
		return nil // password already hashed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = PrivateString(hash)

	return nil
}

// Info returns the public part of the user record.
func (u *User) Info() *UserInfo {
	return &UserInfo{
		Username:    u.Username,
		Name:        u.Name,
		Email:       u.Email,
		Permissions: u.Permissions,
	}
}

// UserFilter narrows the user listing.
type UserFilter struct {
	Username         string
	Email            string
	Name             string
	ConnectionGroup  string
	Suspended        bool
	Permissions      []Permission
	RegisteredAfter  int64
	RegisteredBefore int64
	OrderByKey       string `validate:"omitempty,oneof=Username Email Name RegisteredAt"`
	OrderByDir       string `validate:"omitempty,oneof=ASC DESC asc desc"`
	From             string
	PerPage          int `validate:"gte=0,lte=500"`
}

// Values returns the non-empty filter fields as query parameters.
func (f UserFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "Username", f.Username)
	setString(v, "Email", f.Email)
	setString(v, "Name", f.Name)
	setString(v, "ConnectionGroup", f.ConnectionGroup)
	if f.Suspended {
		v.Set("Suspended", "true")
	}
	for _, p := range f.Permissions {
		v.Add("Permissions", string(p))
	}
	setInt(v, "RegisteredAfter", f.RegisteredAfter)
	setInt(v, "RegisteredBefore", f.RegisteredBefore)
	setString(v, "OrderByKey", f.OrderByKey)
	setString(v, "OrderByDir", f.OrderByDir)
	setString(v, "From", f.From)
	setInt(v, "PerPage", int64(f.PerPage))
	return v
}

// UserRequest is used to add or edit gateway users.
type UserRequest struct {
	Username        string `validate:"required,alphanum,max=64"`
	Password        string `validate:"omitempty,min=6"`
	Name            string
	Email           string `validate:"omitempty,email"`
	ConnectionGroup string
	Permissions     []Permission
	Suspended       bool
}

func (r UserRequest) Values() url.Values {
	v := url.Values{
		"Username":        {r.Username},
		"Name":            {r.Name},
		"Email":           {r.Email},
		"ConnectionGroup": {r.ConnectionGroup},
		"Suspended":       {strconv.FormatBool(r.Suspended)},
	}
	setString(v, "Password", r.Password)
	for _, p := range r.Permissions {
		v.Add("Permissions", string(p))
	}
	return v
}

// UserList is the response of the user filter endpoint.
type UserList struct {
	Users []User
}

// LoginRequest contains the form fields of the login view.
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

func (r LoginRequest) Values() url.Values {
	return url.Values{
		"Username": {r.Username},
		"Password": {r.Password},
	}
}

// LoginResponse is returned by the authentication endpoint.
type LoginResponse struct {
	Token string
}

// CountResponse is returned by endpoints that act on a batch of messages.
type CountResponse struct {
	Count int64
}

func (c CountResponse) String() string {
	return strconv.FormatInt(c.Count, 10)
}
