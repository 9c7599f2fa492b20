package domain

import (
	"net/url"
	"strconv"
)

// Campaign is a bulk send job targeting the recipients of an uploaded file.
type Campaign struct {
	ID          int64 `gorm:"primaryKey;autoIncrement:true"`
	Description string
	Src         string
	Msg         string
	Enc         string
	Priority    int
	FileID      string
	Username    string
	SendBefore  string
	SendAfter   string
	ScheduledAt int64
	SubmittedAt int64
	Total       int
}

type CampaignRequest struct {
	Enc         string `validate:"required,oneof=latin ucs"`
	Msg         string `validate:"required"`
	FileID      string `validate:"required"`
	Priority    int    `validate:"gte=0,lte=10"`
	Src         string `validate:"required"`
	Description string
	SendAfter   string `validate:"omitempty,datetime=15:04"`
	SendBefore  string `validate:"omitempty,datetime=15:04"`
	ScheduledAt int64  `validate:"gte=0"`
}

func (r CampaignRequest) Values() url.Values {
	return url.Values{
		"Enc":         {r.Enc},
		"Msg":         {r.Msg},
		"FileID":      {r.FileID},
		"Priority":    {strconv.Itoa(r.Priority)},
		"Src":         {r.Src},
		"Description": {r.Description},
		"SendAfter":   {r.SendAfter},
		"SendBefore":  {r.SendBefore},
		"ScheduledAt": {strconv.FormatInt(r.ScheduledAt, 10)},
	}
}

// CampaignAction identifies the campaign a stop, retry or report action applies to.
type CampaignAction struct {
	CampaignID int64 `validate:"required,gt=0"`
}

func (a CampaignAction) Values() url.Values {
	return url.Values{"CampaignID": {strconv.FormatInt(a.CampaignID, 10)}}
}

// CampaignReport summarizes the delivery of a campaign.
type CampaignReport struct {
	ID            int64
	Total         int
	MsgSize       int
	TotalMsgs     int
	FirstQueued   int64
	LastSent      int64
	TotalTime     int
	Throughput    string
	PerConnection string
	Statuses      map[MessageStatus]int
}
