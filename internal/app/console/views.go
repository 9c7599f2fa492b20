package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/h44z/sms-portal/internal/domain"
)

const (
	ViewMessage  LocationKey = "message"
	ViewCampaign LocationKey = "campaign"
	ViewFiles    LocationKey = "files"
	ViewReports  LocationKey = "reports"
	ViewUsers    LocationKey = "users"
	ViewServices LocationKey = "services"
)

func (s *Shell) views() []*View {
	return []*View{
		{Key: ViewMessage, Title: "Message", Permission: domain.PermSendMessage, Wire: s.wireMessageView},
		{Key: ViewCampaign, Title: "Campaign", Permission: domain.PermListCampaigns, Wire: s.wireCampaignView},
		{Key: ViewFiles, Title: "Files", Permission: domain.PermListNumFiles, Wire: s.wireFilesView},
		{Key: ViewReports, Title: "Reports", Permission: domain.PermListMessages, Wire: s.wireReportsView},
		{Key: ViewUsers, Title: "Users", Permission: domain.PermListUsers, Wire: s.wireUsersView},
		{Key: ViewServices, Title: "Services", Permission: domain.PermGetStatus, Wire: s.wireServicesView},
	}
}

// currentUsername is only called while a page is wired or an action runs, the user is set then.
func (s *Shell) currentUsername() string {
	if s.user == nil {
		return ""
	}
	return s.user.Username
}

func (s *Shell) pageSize() int {
	return s.cfg.Console.PageSize
}

// region form-parsing

func parseInt(values Values, field string) (int64, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(field, fmt.Sprintf("%s must be a number.", field))
	}
	return v, nil
}

func parseBool(values Values, field string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(values.Get(field)))
	return v
}

// parseTimestamp accepts "2006-01-02 15:04" or "2006-01-02" in local time, empty is zero.
func parseTimestamp(values Values, field string) (int64, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return 0, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, domain.NewValidationError(field, fmt.Sprintf("%s must look like 2006-01-02 15:04.", field))
}

func trimmed(values Values, field string) string {
	return strings.TrimSpace(values.Get(field))
}

// multi returns all values of a field, comma separated entries are split.
func multi(values Values, field string) []string {
	var result []string
	for _, v := range values[field] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}

// endregion form-parsing

func noFilter() struct{} {
	return struct{}{}
}

func ignoreFilter[T any](fn func(ctx context.Context) ([]T, error)) func(ctx context.Context, _ struct{}) ([]T, error) {
	return func(ctx context.Context, _ struct{}) ([]T, error) {
		return fn(ctx)
	}
}
