package audit

import (
	"context"

	"github.com/h44z/sms-portal/internal/domain"
)

type DatabaseRepo interface {
	SaveActivityEntry(ctx context.Context, entry *domain.ActivityEntry) error
}

type ManagerDatabaseRepo interface {
	// GetActivityEntries retrieves the newest activity entries of the given profile, newest first.
	GetActivityEntries(ctx context.Context, profile string, limit int) ([]domain.ActivityEntry, error)
}
