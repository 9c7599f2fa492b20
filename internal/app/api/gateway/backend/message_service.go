package backend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/h44z/sms-portal/internal/domain"
)

// unroutablePrefix marks destinations the simulated delivery always fails for.
const unroutablePrefix = "000"

type MessageService struct {
	messages MessageDatabaseRepo

	now func() time.Time
}

func NewMessageService(messages MessageDatabaseRepo) *MessageService {
	return &MessageService{
		messages: messages,
		now:      time.Now,
	}
}

// Send queues a single message for the user of the request and returns its id.
// Messages with a schedule in the future are kept back until then.
func (s MessageService) Send(ctx context.Context, req domain.MessageRequest) (string, error) {
	now := s.now()
	msg := &domain.Message{
		Username:    domain.GetUserInfo(ctx).Username,
		Msg:         req.Msg,
		Enc:         req.Enc,
		Dst:         req.Dst,
		Src:         req.Src,
		Priority:    req.Priority,
		QueuedAt:    now.Unix(),
		Status:      domain.MsgQueued,
		SendBefore:  req.SendBefore,
		SendAfter:   req.SendAfter,
		ScheduledAt: req.ScheduledAt,
	}
	if req.ScheduledAt > now.Unix() {
		msg.Status = domain.MsgScheduled
	}

	if err := s.messages.SaveMessages(ctx, []*domain.Message{msg}); err != nil {
		return "", fmt.Errorf("failed to queue message: %w", err)
	}

	return strconv.FormatInt(msg.ID, 10), nil
}

func (s MessageService) Filter(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error) {
	msgs, err := s.messages.FindMessages(ctx, filter, false)
	if err != nil {
		return nil, fmt.Errorf("unable to load messages: %w", err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}

	return msgs, nil
}

var exportColumns = []string{
	"ID", "Username", "Src", "Dst", "Enc", "Msg", "Status", "Error", "CampaignID", "QueuedAt", "SentAt", "DeliveredAt",
}

// Export writes all messages matching the filter as CSV. Without PerPage the export is not paged.
func (s MessageService) Export(ctx context.Context, filter domain.MessageFilter, w io.Writer) error {
	msgs, err := s.messages.FindMessages(ctx, filter, true)
	if err != nil {
		return fmt.Errorf("unable to load messages: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return err
	}
	for _, m := range msgs {
		record := []string{
			strconv.FormatInt(m.ID, 10),
			m.Username,
			m.Src,
			m.Dst,
			m.Enc,
			m.Msg,
			string(m.Status),
			m.Error,
			strconv.FormatInt(m.CampaignID, 10),
			strconv.FormatInt(m.QueuedAt, 10),
			strconv.FormatInt(m.SentAt, 10),
			strconv.FormatInt(m.DeliveredAt, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

// Deliver advances all pending messages by one step: due scheduled messages are queued, queued
// messages are delivered. It returns the number of changed messages.
func (s MessageService) Deliver(ctx context.Context) (int, error) {
	now := s.now()
	changed := 0

	scheduled, err := s.messages.FindMessages(ctx, domain.MessageFilter{Status: domain.MsgScheduled}, true)
	if err != nil {
		return 0, fmt.Errorf("unable to load scheduled messages: %w", err)
	}
	for i := range scheduled {
		m := &scheduled[i]
		if m.ScheduledAt > now.Unix() {
			continue
		}
		m.Status = domain.MsgQueued
		if err := s.messages.SaveMessage(ctx, m); err != nil {
			return changed, fmt.Errorf("failed to queue message %d: %w", m.ID, err)
		}
		changed++
	}

	queued, err := s.messages.FindMessages(ctx, domain.MessageFilter{Status: domain.MsgQueued}, true)
	if err != nil {
		return changed, fmt.Errorf("unable to load queued messages: %w", err)
	}
	for i := range queued {
		m := &queued[i]
		if m.ScheduledAt > now.Unix() {
			continue // queued before its schedule moved, wait
		}
		m.RespID = fmt.Sprintf("mock-%d", m.ID)
		m.SentAt = now.Unix()
		if strings.HasPrefix(m.Dst, unroutablePrefix) {
			m.Status = domain.MsgError
			m.Error = "Unroutable destination."
		} else {
			m.Status = domain.MsgDelivered
			m.DeliveredAt = now.Unix()
		}
		if err := s.messages.SaveMessage(ctx, m); err != nil {
			return changed, fmt.Errorf("failed to deliver message %d: %w", m.ID, err)
		}
		changed++
	}

	return changed, nil
}

// RunDelivery calls Deliver in the given interval until the context is done.
func (s MessageService) RunDelivery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Deliver(ctx)
			if err != nil {
				slog.Error("message delivery failed", "error", err)
			} else if n > 0 {
				slog.Debug("delivered messages", "count", n)
			}
		}
	}
}
