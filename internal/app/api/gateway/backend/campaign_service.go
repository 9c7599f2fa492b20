package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/h44z/sms-portal/internal/domain"
)

type CampaignService struct {
	campaigns CampaignDatabaseRepo
	files     FileDatabaseRepo
	messages  MessageDatabaseRepo

	now func() time.Time
}

func NewCampaignService(
	campaigns CampaignDatabaseRepo,
	files FileDatabaseRepo,
	messages MessageDatabaseRepo,
) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		files:     files,
		messages:  messages,
		now:       time.Now,
	}
}

// Create starts a campaign: one message is queued per number of the recipient file.
func (s CampaignService) Create(ctx context.Context, req domain.CampaignRequest) (string, error) {
	file, err := s.files.GetFile(ctx, req.FileID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fail(domain.ErrNotFound, "Couldn't find file %s.", req.FileID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load file %s: %w", req.FileID, err)
	}
	if len(file.Numbers) == 0 {
		return "", fail(domain.ErrInvalidData, "File %s doesn't contain any numbers.", file.Name)
	}

	now := s.now()
	campaign := &domain.Campaign{
		Description: req.Description,
		Src:         req.Src,
		Msg:         req.Msg,
		Enc:         req.Enc,
		Priority:    req.Priority,
		FileID:      file.ID,
		Username:    domain.GetUserInfo(ctx).Username,
		SendBefore:  req.SendBefore,
		SendAfter:   req.SendAfter,
		ScheduledAt: req.ScheduledAt,
		SubmittedAt: now.Unix(),
		Total:       len(file.Numbers),
	}
	if err := s.campaigns.CreateCampaign(ctx, campaign); err != nil {
		return "", fmt.Errorf("failed to store campaign: %w", err)
	}

	status := domain.MsgQueued
	if req.ScheduledAt > now.Unix() {
		status = domain.MsgScheduled
	}
	msgs := make([]*domain.Message, len(file.Numbers))
	for i, number := range file.Numbers {
		msgs[i] = &domain.Message{
			Username:    campaign.Username,
			Msg:         campaign.Msg,
			Enc:         campaign.Enc,
			Dst:         number,
			Src:         campaign.Src,
			Priority:    campaign.Priority,
			QueuedAt:    now.Unix(),
			CampaignID:  campaign.ID,
			Campaign:    campaign.Description,
			Status:      status,
			SendBefore:  campaign.SendBefore,
			SendAfter:   campaign.SendAfter,
			ScheduledAt: campaign.ScheduledAt,
		}
	}
	if err := s.messages.SaveMessages(ctx, msgs); err != nil {
		return "", fmt.Errorf("failed to queue campaign messages: %w", err)
	}

	return strconv.FormatInt(campaign.ID, 10), nil
}

func (s CampaignService) List(ctx context.Context) ([]domain.Campaign, error) {
	campaigns, err := s.campaigns.GetCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load campaigns: %w", err)
	}
	if campaigns == nil {
		campaigns = []domain.Campaign{}
	}

	return campaigns, nil
}

// Stop marks all queued and scheduled messages of the campaign as stopped.
func (s CampaignService) Stop(ctx context.Context, id int64) (domain.CountResponse, error) {
	if _, err := s.campaign(ctx, id); err != nil {
		return domain.CountResponse{}, err
	}

	var total int64
	for _, from := range []domain.MessageStatus{domain.MsgQueued, domain.MsgScheduled} {
		n, err := s.messages.UpdateCampaignMessages(ctx, id, from, domain.MsgStopped)
		if err != nil {
			return domain.CountResponse{}, fmt.Errorf("failed to stop campaign %d: %w", id, err)
		}
		total += n
	}

	return domain.CountResponse{Count: total}, nil
}

// Retry queues all failed messages of the campaign again.
func (s CampaignService) Retry(ctx context.Context, id int64) (domain.CountResponse, error) {
	if _, err := s.campaign(ctx, id); err != nil {
		return domain.CountResponse{}, err
	}

	n, err := s.messages.UpdateCampaignMessages(ctx, id, domain.MsgError, domain.MsgQueued)
	if err != nil {
		return domain.CountResponse{}, fmt.Errorf("failed to retry campaign %d: %w", id, err)
	}

	return domain.CountResponse{Count: n}, nil
}

// Report summarizes the delivery state of the campaign.
func (s CampaignService) Report(ctx context.Context, id int64) (*domain.CampaignReport, error) {
	campaign, err := s.campaign(ctx, id)
	if err != nil {
		return nil, err
	}

	statuses, firstQueued, lastSent, err := s.messages.CampaignMessageStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign statistics: %w", err)
	}

	report := &domain.CampaignReport{
		ID:          campaign.ID,
		Total:       campaign.Total,
		MsgSize:     utf8.RuneCountInString(campaign.Msg),
		FirstQueued: firstQueued,
		LastSent:    lastSent,
		Statuses:    statuses,
	}
	for _, count := range statuses {
		report.TotalMsgs += count
	}

	sent := statuses[domain.MsgSent] + statuses[domain.MsgDelivered] + statuses[domain.MsgNotDelivered]
	if lastSent > firstQueued && firstQueued > 0 {
		report.TotalTime = int(lastSent - firstQueued)
		report.Throughput = fmt.Sprintf("%.2f msg/s", float64(sent)/float64(report.TotalTime))
	} else {
		report.Throughput = "-"
	}
	report.PerConnection = report.Throughput // the mock gateway has a single connection

	return report, nil
}

func (s CampaignService) campaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetCampaign(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fail(domain.ErrNotFound, "Couldn't find campaign %d.", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign %d: %w", id, err)
	}
	return campaign, nil
}
