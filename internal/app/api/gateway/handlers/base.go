package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/sms-portal/internal/app/api/core"
	"github.com/h44z/sms-portal/internal/app/api/core/respond"
	"github.com/h44z/sms-portal/internal/app/api/gateway/backend"
	"github.com/h44z/sms-portal/internal/domain"
)

type Handler interface {
	// GetName returns the name of the handler.
	GetName() string
	// RegisterRoutes registers the routes for the handler.
	RegisterRoutes(g *routegroup.Bundle)
}

// Validator validates request payloads.
type Validator interface {
	Struct(s interface{}) error
}

// NewRestApi mounts all handlers below the api root.
func NewRestApi(handlers ...Handler) core.GroupSetupFn {
	return func(group *routegroup.Bundle) {
		for _, h := range handlers {
			slog.Debug("registering gateway endpoint", "handler", h.GetName())
			h.RegisterRoutes(group)
		}
	}
}

// ParseServiceError maps a service error to the status code and the entries of the error envelope.
func ParseServiceError(err error) (int, []domain.FieldError) {
	if err == nil {
		return http.StatusInternalServerError, []domain.FieldError{{Message: "unknown server error"}}
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, valErr.Errors
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNoPermission):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrNotUnique):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidData):
		code = http.StatusBadRequest
	}

	var failure *backend.Failure
	if errors.As(err, &failure) {
		return code, []domain.FieldError{{Message: failure.Message}}
	}
	if code == http.StatusInternalServerError {
		slog.Error("gateway request failed", "error", err)
		return code, []domain.FieldError{{Message: "Internal Server Error"}}
	}

	return code, []domain.FieldError{{Message: err.Error()}}
}

func respondError(w http.ResponseWriter, err error) {
	code, errs := ParseServiceError(err)
	respond.Errors(w, code, errs...)
}

// validate checks the payload and converts validation failures to field errors.
func validate(v Validator, payload any) error {
	if err := v.Struct(payload); err != nil {
		return domain.FromValidationErrors(err)
	}
	return nil
}

// paramError reports an unparsable parameter.
func paramError(field string, err error) error {
	return domain.NewValidationError(field, err.Error()+".")
}
