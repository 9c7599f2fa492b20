package console

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/h44z/sms-portal/internal/domain"
)

func (s *Shell) wireReportsView(ctx context.Context, p *Page) error {
	messages := NewListView(p, "messages", s.gw.FilterMessages, renderMessages)

	var mu sync.Mutex
	current := domain.MessageFilter{OrderByKey: "QueuedAt", OrderByDir: "DESC", PerPage: s.pageSize()}
	currentFilter := func() domain.MessageFilter {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	NewFormAction(p, "filter", func(values Values) (domain.MessageFilter, error) {
		return buildMessageFilter(values, s.pageSize())
	},
		messages.FilterSubmit(func(filter domain.MessageFilter) {
			mu.Lock()
			current = filter
			mu.Unlock()
		}, "Messages filtered."),
	).Register()

	NewFormAction(p, "export",
		func(values Values) (string, error) {
			name := filepath.Base(trimmed(values, "FileName"))
			if name == "." || name == string(filepath.Separator) || name == "" {
				return "", domain.NewValidationError("FileName", "FileName is required.")
			}
			return filepath.Join(s.cfg.Console.ExportDir, name), nil
		},
		func(ctx context.Context, target string) (string, error) {
			n, err := s.exportMessages(ctx, currentFilter(), target)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Exported %d bytes to %s.", n, target), nil
		},
	).Register()

	_ = messages.Refresh(ctx, currentFilter())
	return nil
}

func (s *Shell) exportMessages(ctx context.Context, filter domain.MessageFilter, target string) (int64, error) {
	f, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}

	filter.PerPage = 0 // the export is not paginated
	n, err := s.gw.ExportMessages(ctx, filter, f)
	closeErr := f.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write export file: %w", closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(target); rmErr != nil {
			slog.Warn("failed to remove incomplete export file", "file", target, "error", rmErr)
		}
		return 0, err
	}
	return n, nil
}

func buildMessageFilter(values Values, pageSize int) (domain.MessageFilter, error) {
	campaignId, err := parseInt(values, "CampaignID")
	if err != nil {
		return domain.MessageFilter{}, err
	}
	perPage, err := parseInt(values, "PerPage")
	if err != nil {
		return domain.MessageFilter{}, err
	}
	if perPage == 0 {
		perPage = int64(pageSize)
	}
	queuedAfter, err := parseTimestamp(values, "QueuedAfter")
	if err != nil {
		return domain.MessageFilter{}, err
	}
	queuedBefore, err := parseTimestamp(values, "QueuedBefore")
	if err != nil {
		return domain.MessageFilter{}, err
	}

	return domain.MessageFilter{
		Username:     trimmed(values, "Username"),
		Dst:          trimmed(values, "Dst"),
		Src:          trimmed(values, "Src"),
		Status:       domain.MessageStatus(trimmed(values, "Status")),
		CampaignID:   campaignId,
		QueuedAfter:  queuedAfter,
		QueuedBefore: queuedBefore,
		OrderByKey:   "QueuedAt",
		OrderByDir:   "DESC",
		PerPage:      int(perPage),
	}, nil
}
