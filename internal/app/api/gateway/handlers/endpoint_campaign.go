package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/h44z/sms-portal/internal/app/api/core/request"
	"github.com/h44z/sms-portal/internal/app/api/core/respond"
	"github.com/h44z/sms-portal/internal/domain"
)

type CampaignService interface {
	Create(ctx context.Context, req domain.CampaignRequest) (string, error)
	List(ctx context.Context) ([]domain.Campaign, error)
	Stop(ctx context.Context, id int64) (domain.CountResponse, error)
	Retry(ctx context.Context, id int64) (domain.CountResponse, error)
	Report(ctx context.Context, id int64) (*domain.CampaignReport, error)
}

type CampaignEndpoint struct {
	authenticator AuthenticationHandler
	validator     Validator
	campaigns     CampaignService
}

func NewCampaignEndpoint(
	authenticator AuthenticationHandler,
	validator Validator,
	campaigns CampaignService,
) CampaignEndpoint {
	return CampaignEndpoint{
		authenticator: authenticator,
		validator:     validator,
		campaigns:     campaigns,
	}
}

func (e CampaignEndpoint) GetName() string {
	return "CampaignEndpoint"
}

func (e CampaignEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	g.With(e.authenticator.LoggedIn(domain.PermStartCampaign)).HandleFunc("POST /campaign", e.handleCreatePost())
	g.With(e.authenticator.LoggedIn(domain.PermListCampaigns)).HandleFunc("GET /campaign/filter", e.handleFilterGet())
	g.With(e.authenticator.LoggedIn(domain.PermListCampaigns)).HandleFunc("GET /campaign/report", e.handleReportGet())
	g.With(e.authenticator.LoggedIn(domain.PermStopCampaign)).HandleFunc("POST /campaign/stop",
		e.handleCountPost(e.campaigns.Stop))
	g.With(e.authenticator.LoggedIn(domain.PermRetryCampaign)).HandleFunc("POST /campaign/retry",
		e.handleCountPost(e.campaigns.Retry))
}

func (e CampaignEndpoint) handleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseCampaignRequest(r)
		if err == nil {
			err = validate(e.validator, req)
		}
		if err != nil {
			respondError(w, err)
			return
		}

		id, err := e.campaigns.Create(r.Context(), req)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, domain.IdResponse{Id: id})
	}
}

func (e CampaignEndpoint) handleFilterGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaigns, err := e.campaigns.List(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, campaigns)
	}
}

func (e CampaignEndpoint) handleReportGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action, err := e.parseAction(r)
		if err != nil {
			respondError(w, err)
			return
		}

		report, err := e.campaigns.Report(r.Context(), action.CampaignID)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, report)
	}
}

// handleCountPost serves the batch actions that answer with the number of changed messages.
func (e CampaignEndpoint) handleCountPost(
	action func(ctx context.Context, id int64) (domain.CountResponse, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := e.parseAction(r)
		if err != nil {
			respondError(w, err)
			return
		}

		count, err := action(r.Context(), req.CampaignID)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.Response(w, count)
	}
}

func (e CampaignEndpoint) parseAction(r *http.Request) (domain.CampaignAction, error) {
	id, err := request.ParamInt(r, "CampaignID")
	if err != nil {
		return domain.CampaignAction{}, paramError("CampaignID", err)
	}

	action := domain.CampaignAction{CampaignID: id}
	if err := validate(e.validator, action); err != nil {
		return domain.CampaignAction{}, err
	}
	return action, nil
}

func parseCampaignRequest(r *http.Request) (domain.CampaignRequest, error) {
	req := domain.CampaignRequest{
		Enc:         request.Param(r, "Enc"),
		Msg:         request.ParamRaw(r, "Msg"),
		FileID:      request.Param(r, "FileID"),
		Src:         request.Param(r, "Src"),
		Description: request.Param(r, "Description"),
		SendAfter:   request.Param(r, "SendAfter"),
		SendBefore:  request.Param(r, "SendBefore"),
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
