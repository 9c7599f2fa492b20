package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/h44z/sms-portal/internal/domain"
)

const (
	msgUnreachable     = "gateway unreachable"
	msgInvalidResponse = "invalid response from gateway"
)

// Interceptor is applied to every failure of every view before anything else is rendered.
type Interceptor struct {
	display Display
	// unauthorized resets the console to the login view. It is called instead of any notification.
	unauthorized func(ctx context.Context)
}

func NewInterceptor(display Display, unauthorized func(ctx context.Context)) *Interceptor {
	return &Interceptor{
		display:      display,
		unauthorized: unauthorized,
	}
}

// Handle reports the error to the user. A 401 response ends the session instead.
// It returns true if the session was ended.
func (i *Interceptor) Handle(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	var apiErr *domain.ApiError
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized:
		slog.Info("gateway rejected session token", "endpoint", apiErr.Endpoint)
		i.unauthorized(ctx)
		return true
	case errors.As(err, &apiErr):
		slog.Warn("gateway request failed", "endpoint", apiErr.Endpoint, "status", apiErr.Status, "error", err)
		i.notifyApiError(apiErr)
	case errors.As(err, &validationErr):
		slog.Debug("invalid form input", "error", err)
		for _, fe := range validationErr.Errors {
			i.notify(fe.Message)
		}
	case errors.Is(err, context.Canceled):
		slog.Debug("action cancelled", "error", err)
	default:
		slog.Error("console action failed", "error", err)
		i.notify(err.Error())
	}

	return false
}

func (i *Interceptor) notifyApiError(apiErr *domain.ApiError) {
	switch {
	case apiErr.Status == 0:
		i.notify(msgUnreachable)
	case len(apiErr.Errors) > 0:
		for _, fe := range apiErr.Errors {
			i.notify(fe.Message)
		}
	case apiErr.Status >= 200 && apiErr.Status < 300:
		i.notify(msgInvalidResponse)
	default:
		i.notify(fmt.Sprintf("request failed: %d %s", apiErr.Status, http.StatusText(apiErr.Status)))
	}
}

func (i *Interceptor) notify(msg string) {
	i.display.Notify(Notification{Level: NotifyError, Message: msg})
}
