// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/mailchimp-backend/internal/errors"
	"github.com/unclebandit/mailchimp-backend/internal/mailchimp"
	"github.com/unclebandit/mailchimp-backend/internal/model"
	"github.com/unclebandit/mailchimp-backend/internal/queue"
	"github.com/unclebandit/mailchimp-backend/internal/repository"
)

type CampaignService struct {
	Mailchimp      MailchimpAPI
	CampaignRepo   repository.CampaignRepositoryInterface
	SubscriberRepo repository.SubscriberRepositoryInterface
	Events         queue.Publisher
	Validate       *validator.Validate
	Logger         *zap.Logger
	Now            func() time.Time
}

// BulkSendRequest is the composite create+content+send input. All fields but
// ListName are required.
type BulkSendRequest struct {
	ListID      string `json:"listId" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	FromName    string `json:"fromName" validate:"required"`
	ReplyTo     string `json:"replyTo" validate:"required"`
	HTMLContent string `json:"htmlContent" validate:"required"`
	ListName    string `json:"listName,omitempty"`
}

// Result struct for BulkSend
type BulkSendResult struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	CampaignID      string          `json:"campaignId"`
	SubscriberCount int             `json:"subscriberCount"`
	Campaign        *model.Campaign `json:"-"`
}

func (s *CampaignService) log() *zap.Logger { return orNop(s.Logger) }

var defaultValidator = NewValidator()

func (s *CampaignService) validator() *validator.Validate {
	if s.Validate == nil {
		return defaultValidator
	}
	return s.Validate
}

// BulkSend creates a regular campaign for the list, sets its HTML, sends it,
// then stores a local snapshot with the list's current local subscribers.
// A failure after creation leaves the remote campaign as it is.
func (s *CampaignService) BulkSend(ctx context.Context, req BulkSendRequest) (*BulkSendResult, error) {
	// Blank-only fields count as missing; the values sent keep their whitespace.
	trimmed := BulkSendRequest{
		ListID:      strings.TrimSpace(req.ListID),
		Subject:     strings.TrimSpace(req.Subject),
		FromName:    strings.TrimSpace(req.FromName),
		ReplyTo:     strings.TrimSpace(req.ReplyTo),
		HTMLContent: strings.TrimSpace(req.HTMLContent),
	}
	if err := validateRequired(s.validator(), "Missing required fields", trimmed); err != nil {
		return nil, err
	}
	req.ListID = trimmed.ListID

	now := nowFunc(s.Now)
	log := s.log().With(zap.String("list_id", req.ListID))

	// Step 1: create the campaign
	campaign, err := s.Mailchimp.CreateCampaign(ctx, mailchimp.CampaignRequest{
		Type:       mailchimp.CampaignTypeRegular,
		Recipients: mailchimp.CampaignRecipients{ListID: req.ListID},
		Settings: mailchimp.CampaignSettings{
			SubjectLine: req.Subject,
			FromName:    req.FromName,
			ReplyTo:     req.ReplyTo,
			Title:       "Campaign " + now.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		log.Error("error creating campaign", zap.Error(err))
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	log = log.With(zap.String("campaign_id", campaign.ID))
	log.Info("campaign created")

	// Step 2: set the content
	if _, err := s.Mailchimp.SetCampaignContent(ctx, campaign.ID, req.HTMLContent); err != nil {
		log.Error("error setting campaign content, remote campaign left unsent", zap.Error(err))
		return nil, fmt.Errorf("set campaign content: %w", err)
	}
	log.Info("campaign content set")

	// Step 3: send
	if err := s.Mailchimp.SendCampaign(ctx, campaign.ID); err != nil {
		log.Error("error sending campaign, remote campaign left unsent", zap.Error(err))
		return nil, fmt.Errorf("send campaign: %w", err)
	}
	log.Info("campaign sent")

	subscribers, err := s.SubscriberRepo.FindByListID(ctx, req.ListID)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(subscribers))
	for _, sub := range subscribers {
		ids = append(ids, sub.ID)
	}

	doc := &model.Campaign{
		Subject:     req.Subject,
		Content:     req.HTMLContent,
		ListID:      req.ListID,
		ListName:    req.ListName,
		RemoteID:    campaign.ID,
		SentDate:    now,
		CreatedAt:   now,
		Subscribers: ids,
	}
	if err := s.CampaignRepo.Create(ctx, doc); err != nil {
		log.Error("campaign sent but local snapshot failed", zap.Error(err))
		return nil, fmt.Errorf("save campaign: %w", err)
	}

	publish(ctx, s.Events, log, newEvent(model.EventCampaignSent, req.ListID, campaign.ID, map[string]any{
		"subject":         req.Subject,
		"subscriberCount": len(ids),
	}, now))

	return &BulkSendResult{
		Success:         true,
		Message:         "Email campaign sent successfully",
		CampaignID:      campaign.ID,
		SubscriberCount: len(ids),
		Campaign:        doc,
	}, nil
}

// CreateCampaign stores a campaign record locally without touching the remote API.
func (s *CampaignService) CreateCampaign(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	if err := validateRequired(s.validator(), "Missing required fields", c); err != nil {
		return nil, err
	}

	now := nowFunc(s.Now)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.SentDate.IsZero() {
		c.SentDate = now
	}

	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetContent sets the HTML body of an existing remote campaign.
func (s *CampaignService) SetContent(ctx context.Context, campaignID, html string) (*mailchimp.CampaignContent, error) {
	if strings.TrimSpace(html) == "" {
		return nil, appErrors.NewValidation("HTML content is required")
	}
	content, err := s.Mailchimp.SetCampaignContent(ctx, campaignID, html)
	if err != nil {
		s.log().Error("error setting campaign content", zap.String("campaign_id", campaignID), zap.Error(err))
		return nil, err
	}
	return content, nil
}

// Send sends an existing remote campaign.
func (s *CampaignService) Send(ctx context.Context, campaignID string) error {
	if err := s.Mailchimp.SendCampaign(ctx, campaignID); err != nil {
		s.log().Error("error sending campaign", zap.String("campaign_id", campaignID), zap.Error(err))
		return err
	}
	return nil
}

// ListCampaigns fetches local campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, page, pageSize int) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(ctx, offset, pageSize)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

// GetCampaign fetches a local campaign by its document id
func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(ctx, id)
}
