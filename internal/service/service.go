// internal/service/service.go
package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/mailchimp-backend/internal/errors"
	"github.com/unclebandit/mailchimp-backend/internal/mailchimp"
	"github.com/unclebandit/mailchimp-backend/internal/model"
	"github.com/unclebandit/mailchimp-backend/internal/queue"
)

// MailchimpAPI is the remote marketing API as seen by the services.
type MailchimpAPI interface {
	Ping(ctx context.Context) error
	GetAllLists(ctx context.Context) ([]mailchimp.List, error)
	AddListMember(ctx context.Context, listID string, m mailchimp.MemberRequest) (*mailchimp.Member, error)
	CreateSegment(ctx context.Context, listID string, s mailchimp.SegmentRequest) (*mailchimp.Segment, error)
	AddSegmentMember(ctx context.Context, listID, segmentID, email string) (*mailchimp.Member, error)
	CreateCampaign(ctx context.Context, req mailchimp.CampaignRequest) (*mailchimp.Campaign, error)
	SetCampaignContent(ctx context.Context, campaignID, html string) (*mailchimp.CampaignContent, error)
	SendCampaign(ctx context.Context, campaignID string) error
}

var _ MailchimpAPI = (*mailchimp.Client)(nil)

// NewValidator reports field names by their json tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequired turns validator failures into a single ValidationError.
func validateRequired(v *validator.Validate, prefix string, data any) error {
	err := v.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return appErrors.NewValidation("%s: %s", prefix, strings.Join(fields, ", "))
}

func publish(ctx context.Context, p queue.Publisher, log *zap.Logger, e *model.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Warn("⚠️ failed to publish event", zap.String("type", e.Type), zap.Error(err))
	}
}

func newEvent(typ, listID, campaignID string, payload map[string]any, now time.Time) *model.Event {
	return &model.Event{
		EventID:    uuid.NewString(),
		Type:       typ,
		ListID:     listID,
		CampaignID: campaignID,
		Payload:    payload,
		OccurredAt: now,
	}
}

func nowFunc(f func() time.Time) time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
