package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/h44z/sms-portal/internal/app/api/core/request"
	"github.com/h44z/sms-portal/internal/app/api/core/respond"
	"github.com/h44z/sms-portal/internal/domain"
)

const tokenParam = "Token"

type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type AuthenticationHandler struct {
	authenticator TokenAuthenticator
}

func NewAuthenticationHandler(authenticator TokenAuthenticator) AuthenticationHandler {
	return AuthenticationHandler{
		authenticator: authenticator,
	}
}

// LoggedIn checks the token of the request. If permissions are given, the user must hold all of them.
func (h AuthenticationHandler) LoggedIn(perms ...domain.Permission) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := requestToken(r)
			if err != nil {
				respond.Errors(w, http.StatusBadRequest, domain.FieldError{Message: "Malformed request body."})
				return
			}

			user, err := h.authenticator.Authenticate(r.Context(), token)
			if err != nil {
				respondError(w, err)
				return
			}

			info := &domain.ContextUserInfo{Username: user.Username, Permissions: user.Permissions}
			for _, p := range perms {
				if !info.Can(p) {
					respond.Errors(w, http.StatusForbidden,
						domain.FieldError{Message: "You don't have permission to " + string(p) + "."})
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(domain.SetUserInfo(r.Context(), info)))
		})
	}
}

// requestToken reads the token from the parameters or, for JSON bodies, from the top-level Token member.
// JSON bodies are restored so the handler can decode them again.
func requestToken(r *http.Request) (string, error) {
	if !request.IsJson(r) {
		return request.Param(r, tokenParam), nil
	}

	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var envelope struct {
		Token string
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &envelope); err != nil {
			return "", err
		}
	}
	if envelope.Token == "" {
		return request.Param(r, tokenParam), nil
	}
	return envelope.Token, nil
}
