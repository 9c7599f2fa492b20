package audit

import (
	"context"
	"fmt"

	"github.com/h44z/sms-portal/internal/domain"
)

const defaultActivityLimit = 50

type Manager struct {
	db ManagerDatabaseRepo
}

func NewManager(db ManagerDatabaseRepo) *Manager {
	return &Manager{db: db}
}

// GetRecent returns the newest activity entries of the given console profile.
func (m *Manager) GetRecent(ctx context.Context, profile string, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	entries, err := m.db.GetActivityEntries(ctx, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity entries: %w", err)
	}

	return entries, nil
}

// LastLogin returns the username of the newest login recorded for the profile, or an empty string.
func (m *Manager) LastLogin(ctx context.Context, profile string) (string, error) {
	entries, err := m.GetRecent(ctx, profile, defaultActivityLimit)
	if err != nil {
		return "", err
	}

	for _, e := range entries {
		if e.Kind == domain.ActivityLogin {
			return e.Username, nil
		}
	}
	return "", nil
}
