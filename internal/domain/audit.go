package domain

import "time"

type ActivityKind string

const (
	ActivityLogin          ActivityKind = "login"
	ActivityLogout         ActivityKind = "logout"
	ActivitySessionExpired ActivityKind = "session-expired"
	ActivityNavigate       ActivityKind = "navigate"
)

// ActivityEntry is one recorded console event.
type ActivityEntry struct {
	UniqueId  uint64    `gorm:"primaryKey;autoIncrement:true;column:id"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_ca_created"`

	Profile string       `gorm:"column:profile;index:idx_ca_profile"`
	Kind    ActivityKind `gorm:"column:kind"`

	Username string `gorm:"column:username"`
	Message  string `gorm:"column:message"`
}

func (ActivityEntry) TableName() string {
	return "console_activity"
}

// SessionToken is the persisted bearer token of one console profile.
type SessionToken struct {
	Profile   string    `gorm:"primaryKey;column:profile"`
	Token     string    `gorm:"column:token"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SessionToken) TableName() string {
	return "console_sessions"
}
