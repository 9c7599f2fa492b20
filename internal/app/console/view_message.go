package console

import (
	"context"
	"strconv"

	"github.com/h44z/sms-portal/internal/domain"
)

func (s *Shell) wireMessageView(ctx context.Context, p *Page) error {
	messages := NewListView(p, "messages", s.gw.FilterMessages, renderMessages)
	recent := func() domain.MessageFilter {
		return domain.MessageFilter{
			Username:   s.currentUsername(),
			OrderByKey: "QueuedAt",
			OrderByDir: "DESC",
			PerPage:    s.pageSize(),
		}
	}

	NewFormAction(p, "send", buildMessageRequest,
		func(ctx context.Context, req domain.MessageRequest) (string, error) {
			if _, err := s.gw.SendMessage(ctx, req); err != nil {
				return "", err
			}
			return "Message queued.", nil
		},
		messages.Refresher(recent),
	).Register()

	_ = messages.Refresh(ctx, recent())
	return nil
}

func buildMessageRequest(values Values) (domain.MessageRequest, error) {
	priority, err := parseInt(values, "Priority")
	if err != nil {
		return domain.MessageRequest{}, err
	}
	scheduledAt, err := parseTimestamp(values, "ScheduledAt")
	if err != nil {
		return domain.MessageRequest{}, err
	}

	return domain.MessageRequest{
		Enc:         trimmed(values, "Enc"),
		Msg:         values.Get("Msg"),
		Dst:         trimmed(values, "Dst"),
		Src:         trimmed(values, "Src"),
		Priority:    int(priority),
		SendAfter:   trimmed(values, "SendAfter"),
		SendBefore:  trimmed(values, "SendBefore"),
		ScheduledAt: scheduledAt,
	}, nil
}

func renderMessages(msgs []domain.Message) Component {
	t := Table{
		Columns: []string{"ID", "Queued", "Src", "Dst", "Enc", "Status", "Campaign", "Message"},
		Empty:   "No messages found.",
	}
	for _, m := range msgs {
		status := string(m.Status)
		if m.Error != "" {
			status += " (" + m.Error + ")"
		}
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(m.ID, 10),
			domain.FormatUnix(m.QueuedAt),
			m.Src,
			m.Dst,
			m.Enc,
			status,
			m.Campaign,
			m.Msg,
		})
	}
	return t
}
