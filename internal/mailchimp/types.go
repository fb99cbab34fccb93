package mailchimp

import "fmt"

const (
	CampaignTypeRegular = "regular"
	MemberSubscribed    = "subscribed"
	MatchAll            = "all"
)

type List struct {
	ID          string    `json:"id"`
	WebID       int64     `json:"web_id"`
	Name        string    `json:"name"`
	DateCreated string    `json:"date_created"`
	Stats       ListStats `json:"stats"`
}

type ListStats struct {
	MemberCount int `json:"member_count"`
}

type listsResponse struct {
	Lists      []List `json:"lists"`
	TotalItems int    `json:"total_items"`
}

type MemberRequest struct {
	EmailAddress string            `json:"email_address"`
	Status       string            `json:"status"`
	MergeFields  map[string]string `json:"merge_fields,omitempty"`
}

type Member struct {
	ID           string         `json:"id"`
	EmailAddress string         `json:"email_address"`
	Status       string         `json:"status"`
	ListID       string         `json:"list_id"`
	MergeFields  map[string]any `json:"merge_fields,omitempty"`
}

type SegmentCondition struct {
	ConditionType string `json:"condition_type,omitempty"`
	Field         string `json:"field"`
	Op            string `json:"op"`
	Value         any    `json:"value"`
}

type SegmentOptions struct {
	Match      string             `json:"match"`
	Conditions []SegmentCondition `json:"conditions"`
}

type SegmentRequest struct {
	Name    string         `json:"name"`
	Options SegmentOptions `json:"options"`
}

type Segment struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
	Type        string `json:"type"`
	ListID      string `json:"list_id"`
	CreatedAt   string `json:"created_at"`
}

type segmentMemberRequest struct {
	EmailAddress string `json:"email_address"`
}

type CampaignRecipients struct {
	ListID string `json:"list_id"`
}

type CampaignSettings struct {
	SubjectLine string `json:"subject_line"`
	Title       string `json:"title"`
	FromName    string `json:"from_name"`
	ReplyTo     string `json:"reply_to"`
}

type CampaignRequest struct {
	Type       string             `json:"type"` // must be CampaignTypeRegular for bulk-send
	Recipients CampaignRecipients `json:"recipients"`
	Settings   CampaignSettings   `json:"settings"`
}

type Campaign struct {
	ID         string `json:"id"`
	WebID      int64  `json:"web_id"`
	Type       string `json:"type"`
	CreateTime string `json:"create_time"`
	Status     string `json:"status"`
	EmailsSent int    `json:"emails_sent"`
}

type contentRequest struct {
	HTML string `json:"html"`
}

type CampaignContent struct {
	PlainText string `json:"plain_text"`
	HTML      string `json:"html"`
}

// APIError is the problem-details body Mailchimp returns on non-2xx responses.
type APIError struct {
	Status   int    `json:"status"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

func (e *APIError) Error() string {
	switch {
	case e.Title != "" && e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	case e.Detail != "":
		return e.Detail
	case e.Title != "":
		return e.Title
	}
	return fmt.Sprintf("mailchimp: unexpected status %d", e.Status)
}
