package domain

import (
	"net/url"
	"strconv"
)

const (
	EncodingLatin = "latin"
	EncodingUCS   = "ucs"
)

type MessageStatus string

const (
	MsgQueued       MessageStatus = "Queued"
	MsgSubmitted    MessageStatus = "Submitted"
	MsgError        MessageStatus = "Error"
	MsgSent         MessageStatus = "Sent"
	MsgDelivered    MessageStatus = "Delivered"
	MsgNotDelivered MessageStatus = "Not Delivered"
	MsgScheduled    MessageStatus = "Scheduled"
	MsgStopped      MessageStatus = "Stopped"
)

type Message struct {
	ID              int64 `gorm:"primaryKey;autoIncrement:true"`
	RespID          string
	ConnectionGroup string
	Connection      string
	Username        string
	Msg             string
	Enc             string
	Dst             string
	Src             string
	Priority        int
	QueuedAt        int64
	SentAt          int64
	DeliveredAt     int64
	CampaignID      int64 `gorm:"index:idx_msg_campaign"`
	Campaign        string
	Status          MessageStatus `gorm:"index:idx_msg_status"`
	Error           string
	SendBefore      string
	SendAfter       string
	ScheduledAt     int64
}

// MessageRequest is the payload of a single message submission.
type MessageRequest struct {
	Enc         string `validate:"required,oneof=latin ucs"`
	Msg         string `validate:"required"`
	Dst         string `validate:"required,numeric,max=15"`
	Src         string `validate:"required"`
	Priority    int    `validate:"gte=0,lte=10"`
	SendAfter   string `validate:"omitempty,datetime=15:04"`
	SendBefore  string `validate:"omitempty,datetime=15:04"`
	ScheduledAt int64  `validate:"gte=0"`
}

func (r MessageRequest) Values() url.Values {
	return url.Values{
		"Enc":         {r.Enc},
		"Msg":         {r.Msg},
		"Dst":         {r.Dst},
		"Src":         {r.Src},
		"Priority":    {strconv.Itoa(r.Priority)},
		"SendAfter":   {r.SendAfter},
		"SendBefore":  {r.SendBefore},
		"ScheduledAt": {strconv.FormatInt(r.ScheduledAt, 10)},
	}
}

// MessageFilter narrows the message listing used by the delivery reports.
type MessageFilter struct {
	Username        string
	Dst             string
	Src             string
	Enc             string `validate:"omitempty,oneof=latin ucs"`
	Status          MessageStatus
	CampaignID      int64
	QueuedAfter     int64
	QueuedBefore    int64
	DeliveredAfter  int64
	DeliveredBefore int64
	OrderByKey      string `validate:"omitempty,oneof=QueuedAt DeliveredAt SentAt"`
	OrderByDir      string `validate:"omitempty,oneof=ASC DESC asc desc"`
	From            string
	PerPage         int `validate:"gte=0,lte=1000"`
}

// Values returns the non-empty filter fields as query parameters.
func (f MessageFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "Username", f.Username)
	setString(v, "Dst", f.Dst)
	setString(v, "Src", f.Src)
	setString(v, "Enc", f.Enc)
	setString(v, "Status", string(f.Status))
	setInt(v, "CampaignID", f.CampaignID)
	setInt(v, "QueuedAfter", f.QueuedAfter)
	setInt(v, "QueuedBefore", f.QueuedBefore)
	setInt(v, "DeliveredAfter", f.DeliveredAfter)
	setInt(v, "DeliveredBefore", f.DeliveredBefore)
	setString(v, "OrderByKey", f.OrderByKey)
	setString(v, "OrderByDir", f.OrderByDir)
	setString(v, "From", f.From)
	setInt(v, "PerPage", int64(f.PerPage))
	return v
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setInt(v url.Values, key string, value int64) {
	if value != 0 {
		v.Set(key, strconv.FormatInt(value, 10))
	}
}
