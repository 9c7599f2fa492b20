package console

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/h44z/sms-portal/internal/domain"
)

func (s *Shell) wireCampaignView(ctx context.Context, p *Page) error {
	campaigns := NewListView(p, "campaigns", ignoreFilter(s.gw.FilterCampaigns), renderCampaigns)
	campaignSelect := NewListView(p, "campaign-select", ignoreFilter(s.gw.FilterCampaigns), renderCampaignOptions)
	fileSelect := NewListView(p, "file-select", ignoreFilter(s.gw.FilterFiles), renderFileOptions)

	NewFormAction(p, "create", buildCampaignRequest,
		func(ctx context.Context, req domain.CampaignRequest) (string, error) {
			if _, err := s.gw.CreateCampaign(ctx, req); err != nil {
				return "", err
			}
			return "All messages for campaign have been queued.", nil
		},
		campaigns.Refresher(noFilter),
		campaignSelect.Refresher(noFilter),
	).Register()

	NewFormAction(p, "stop", buildCampaignAction,
		func(ctx context.Context, action domain.CampaignAction) (string, error) {
			resp, err := s.gw.StopCampaign(ctx, action)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d pending messages have been stopped.", resp.Count), nil
		},
		campaigns.Refresher(noFilter),
	).Register()

	NewFormAction(p, "retry", buildCampaignAction,
		func(ctx context.Context, action domain.CampaignAction) (string, error) {
			resp, err := s.gw.RetryCampaign(ctx, action)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d error messages have been re-queued.", resp.Count), nil
		},
		campaigns.Refresher(noFilter),
	).Register()

	NewFormAction(p, "report", buildCampaignAction,
		func(ctx context.Context, action domain.CampaignAction) (string, error) {
			report, err := s.gw.CampaignReport(ctx, action)
			if err != nil {
				return "", err
			}
			p.Mount("report", renderCampaignReport(report))
			return "", nil
		},
	).Register()

	_ = campaigns.Refresh(ctx, noFilter())
	_ = campaignSelect.Refresh(ctx, noFilter())
	_ = fileSelect.Refresh(ctx, noFilter())
	return nil
}

func buildCampaignRequest(values Values) (domain.CampaignRequest, error) {
	priority, err := parseInt(values, "Priority")
	if err != nil {
		return domain.CampaignRequest{}, err
	}
	scheduledAt, err := parseTimestamp(values, "ScheduledAt")
	if err != nil {
		return domain.CampaignRequest{}, err
	}

	return domain.CampaignRequest{
		Enc:         trimmed(values, "Enc"),
		Msg:         values.Get("Msg"),
		FileID:      trimmed(values, "FileID"),
		Priority:    int(priority),
		Src:         trimmed(values, "Src"),
		Description: trimmed(values, "Description"),
		SendAfter:   trimmed(values, "SendAfter"),
		SendBefore:  trimmed(values, "SendBefore"),
		ScheduledAt: scheduledAt,
	}, nil
}

func buildCampaignAction(values Values) (domain.CampaignAction, error) {
	id, err := parseInt(values, "CampaignID")
	if err != nil {
		return domain.CampaignAction{}, err
	}
	return domain.CampaignAction{CampaignID: id}, nil
}

func renderCampaigns(campaigns []domain.Campaign) Component {
	t := Table{
		Columns: []string{"ID", "Description", "Src", "Total", "Submitted", "Scheduled", "Message"},
		Empty:   "No campaigns found.",
	}
	for _, c := range campaigns {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Description,
			c.Src,
			strconv.Itoa(c.Total),
			domain.FormatUnix(c.SubmittedAt),
			domain.FormatUnix(c.ScheduledAt),
			c.Msg,
		})
	}
	return t
}

func renderCampaignOptions(campaigns []domain.Campaign) Component {
	opts := Options{}
	for _, c := range campaigns {
		label := c.Description
		if label == "" {
			label = c.Msg
		}
		opts.Items = append(opts.Items, Option{
			Value: strconv.FormatInt(c.ID, 10),
			Label: fmt.Sprintf("#%d %s", c.ID, label),
		})
	}
	return opts
}

func renderCampaignReport(r *domain.CampaignReport) Component {
	d := Details{
		Title: fmt.Sprintf("Campaign #%d", r.ID),
		Items: []DetailItem{
			{Label: "Recipients", Value: strconv.Itoa(r.Total)},
			{Label: "Message size", Value: strconv.Itoa(r.MsgSize)},
			{Label: "Total messages", Value: strconv.Itoa(r.TotalMsgs)},
			{Label: "First queued", Value: domain.FormatUnix(r.FirstQueued)},
			{Label: "Last sent", Value: domain.FormatUnix(r.LastSent)},
			{Label: "Total time (s)", Value: strconv.Itoa(r.TotalTime)},
			{Label: "Throughput", Value: r.Throughput},
			{Label: "Per connection", Value: r.PerConnection},
		},
	}

	statuses := make([]string, 0, len(r.Statuses))
	for status := range r.Statuses {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		d.Items = append(d.Items, DetailItem{
			Label: status,
			Value: strconv.Itoa(r.Statuses[domain.MessageStatus(status)]),
		})
	}

	return d
}
