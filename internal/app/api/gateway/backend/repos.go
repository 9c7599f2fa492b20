package backend

import (
	"context"

	"github.com/h44z/sms-portal/internal/domain"
)

type UserDatabaseRepo interface {
	GetUser(ctx context.Context, username string) (*domain.User, error)
	FindUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	SaveUser(ctx context.Context, username string, updateFunc func(u *domain.User) (*domain.User, error)) error
}

type MessageDatabaseRepo interface {
	SaveMessages(ctx context.Context, msgs []*domain.Message) error
	SaveMessage(ctx context.Context, msg *domain.Message) error
	FindMessages(ctx context.Context, filter domain.MessageFilter, unlimited bool) ([]domain.Message, error)
	UpdateCampaignMessages(ctx context.Context, campaignId int64, from, to domain.MessageStatus) (int64, error)
	CampaignMessageStats(ctx context.Context, campaignId int64) (map[domain.MessageStatus]int, int64, int64, error)
}

type CampaignDatabaseRepo interface {
	CreateCampaign(ctx context.Context, campaign *domain.Campaign) error
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)
	GetCampaigns(ctx context.Context) ([]domain.Campaign, error)
}

type FileDatabaseRepo interface {
	SaveFile(ctx context.Context, file *domain.NumFile) error
	GetFile(ctx context.Context, id string) (*domain.NumFile, error)
	GetFiles(ctx context.Context) ([]domain.NumFile, error)
	DeleteFile(ctx context.Context, id string) error
}
