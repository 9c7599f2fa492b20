package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/sms-portal/internal/app/api/core/request"
	"github.com/h44z/sms-portal/internal/app/api/core/respond"
	"github.com/h44z/sms-portal/internal/domain"
)

type MessageService interface {
	Send(ctx context.Context, req domain.MessageRequest) (string, error)
	Filter(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error)
	Export(ctx context.Context, filter domain.MessageFilter, w io.Writer) error
}

type MessageEndpoint struct {
	authenticator AuthenticationHandler
	validator     Validator
	messages      MessageService
}

func NewMessageEndpoint(authenticator AuthenticationHandler, validator Validator, messages MessageService) MessageEndpoint {
	return MessageEndpoint{
		authenticator: authenticator,
		validator:     validator,
		messages:      messages,
	}
}

func (e MessageEndpoint) GetName() string {
	return "MessageEndpoint"
}

func (e MessageEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.With(e.authenticator.LoggedIn(domain.PermSendMessage)).HandleFunc("POST /message", e.handleSendPost())
	g.With(e.authenticator.LoggedIn(domain.PermListMessages)).HandleFunc("GET /message/filter", e.handleFilterGet())
}

func (e MessageEndpoint) handleSendPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseMessageRequest(r)
		if err == nil {
			err = validate(e.validator, req)
		}
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := e.messages.Send(r.Context(), req)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, domain.IdResponse{Id: id})
	}
}

// handleFilterGet lists messages, or streams them as CSV file if the parameter CSV is set.
func (e MessageEndpoint) handleFilterGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseMessageFilter(r)
		if err == nil {
			err = validate(e.validator, filter)
		}
		if err != nil {
			respondError(w, err)
			return
		}

		if request.ParamBool(r, "CSV") {
			pr, pw := io.Pipe()
			go func() {
				_ = pw.CloseWithError(e.messages.Export(r.Context(), filter, pw))
			}()
			respond.AttachmentReader(w, http.StatusOK, "messages.csv", "text/csv", 0, pr)
			_ = pr.Close()
			return
		}

		msgs, err := e.messages.Filter(r.Context(), filter)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, msgs)
	}
}

func parseMessageRequest(r *http.Request) (domain.MessageRequest, error) {
	req := domain.MessageRequest{
		Enc:        request.Param(r, "Enc"),
		Msg:        request.ParamRaw(r, "Msg"),
		Dst:        request.Param(r, "Dst"),
		Src:        request.Param(r, "Src"),
		SendAfter:  request.Param(r, "SendAfter"),
		SendBefore: request.Param(r, "SendBefore"),
	}

	priority, err := request.ParamInt(r, "Priority")
	if err != nil {
		return req, paramError("Priority", err)
	}
	req.Priority = int(priority)

	if req.ScheduledAt, err = request.ParamInt(r, "ScheduledAt"); err != nil {
		return req, paramError("ScheduledAt", err)
	}

	return req, nil
}

func parseMessageFilter(r *http.Request) (domain.MessageFilter, error) {
	filter := domain.MessageFilter{
		Username:   request.Param(r, "Username"),
		Dst:        request.Param(r, "Dst"),
		Src:        request.Param(r, "Src"),
		Enc:        request.Param(r, "Enc"),
		Status:     domain.MessageStatus(request.Param(r, "Status")),
		OrderByKey: request.Param(r, "OrderByKey"),
		OrderByDir: request.Param(r, "OrderByDir"),
		From:       request.Param(r, "From"),
	}

	ints := []struct {
		name   string
		target *int64
	}{
		{"CampaignID", &filter.CampaignID},
		{"QueuedAfter", &filter.QueuedAfter},
		{"QueuedBefore", &filter.QueuedBefore},
		{"DeliveredAfter", &filter.DeliveredAfter},
		{"DeliveredBefore", &filter.DeliveredBefore},
	}
	for _, p := range ints {
		n, err := request.ParamInt(r, p.name)
		if err != nil {
			return filter, paramError(p.name, err)
		}
		*p.target = n
	}

	perPage, err := request.ParamInt(r, "PerPage")
	if err != nil {
		return filter, paramError("PerPage", err)
	}
	filter.PerPage = int(perPage)

	return filter, nil
}
