// internal/service/audience_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/mailchimp-backend/internal/errors"
	"github.com/unclebandit/mailchimp-backend/internal/mailchimp"
	"github.com/unclebandit/mailchimp-backend/internal/model"
	"github.com/unclebandit/mailchimp-backend/internal/queue"
	"github.com/unclebandit/mailchimp-backend/internal/repository"
	"github.com/unclebandit/mailchimp-backend/internal/upload"
)

// CSV columns read by the importer.
const (
	ColumnEmail     = "email"
	ColumnFirstName = "first_name"
	ColumnLastName  = "last_name"
)

type AudienceService struct {
	Mailchimp      MailchimpAPI
	SubscriberRepo repository.SubscriberRepositoryInterface
	Events         queue.Publisher
	Logger         *zap.Logger
	Now            func() time.Time
}

func (s *AudienceService) log() *zap.Logger { return orNop(s.Logger) }

func (s *AudienceService) Ping(ctx context.Context) error {
	return s.Mailchimp.Ping(ctx)
}

// GetAllLists returns every audience known to the remote account.
func (s *AudienceService) GetAllLists(ctx context.Context) ([]mailchimp.List, error) {
	lists, err := s.Mailchimp.GetAllLists(ctx)
	if err != nil {
		s.log().Error("error fetching lists", zap.Error(err))
		return nil, err
	}
	return lists, nil
}

// AddMember subscribes a single address remotely. fields are passed through as merge fields.
func (s *AudienceService) AddMember(ctx context.Context, listID, email string, fields map[string]string) (*mailchimp.Member, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, appErrors.NewValidation("Email is required")
	}

	member, err := s.Mailchimp.AddListMember(ctx, listID, mailchimp.MemberRequest{
		EmailAddress: email,
		Status:       mailchimp.MemberSubscribed,
		MergeFields:  fields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add subscriber: %w", err)
	}
	return member, nil
}

// BulkImportFile parses the uploaded CSV at path, removes it, and imports every row.
// The file is gone when this returns, whatever the outcome.
func (s *AudienceService) BulkImportFile(ctx context.Context, listID, path string) (*model.ImportResult, error) {
	defer s.cleanup(path)

	records, err := ParseCSVFile(path)
	s.cleanup(path)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk import: %w", err)
	}

	s.log().Debug("parsed subscribers", zap.String("list_id", listID), zap.Int("rows", len(records)))
	return s.ImportRecords(ctx, listID, records)
}

// ImportRecords runs the per-row pipeline sequentially. A failing row is
// recorded in the result and never stops the rows after it.
func (s *AudienceService) ImportRecords(ctx context.Context, listID string, records []map[string]string) (*model.ImportResult, error) {
	if strings.TrimSpace(listID) == "" {
		return nil, appErrors.NewValidation("List ID is required")
	}

	result := model.NewImportResult()
	for i, rec := range records {
		email := strings.TrimSpace(rec[ColumnEmail])
		if email == "" {
			result.AddFailure(fmt.Sprintf("row %d: missing email address", i+1))
			continue
		}

		if err := s.importRow(ctx, listID, email, rec); err != nil {
			s.log().Warn("import row failed", zap.String("list_id", listID), zap.String("email", email), zap.Error(err))
			result.AddFailure(fmt.Sprintf("error adding %s: %v", email, err))
			continue
		}
		result.AddSuccess()
	}

	s.log().Info("✅ import completed",
		zap.String("list_id", listID),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed))

	publish(ctx, s.Events, s.log(), newEvent(model.EventImportCompleted, listID, "", map[string]any{
		"success": result.Success,
		"failed":  result.Failed,
	}, nowFunc(s.Now)))

	return result, nil
}

func (s *AudienceService) importRow(ctx context.Context, listID, email string, rec map[string]string) error {
	firstName := rec[ColumnFirstName]
	lastName := rec[ColumnLastName]

	_, err := s.Mailchimp.AddListMember(ctx, listID, mailchimp.MemberRequest{
		EmailAddress: email,
		Status:       mailchimp.MemberSubscribed,
		MergeFields: map[string]string{
			"FNAME": firstName,
			"LNAME": lastName,
		},
	})
	if err != nil {
		return err
	}

	return s.SubscriberRepo.Upsert(ctx, &model.Subscriber{
		Email:            email,
		FirstName:        firstName,
		LastName:         lastName,
		ListID:           listID,
		Status:           model.StatusSubscribed,
		SubscriptionDate: nowFunc(s.Now),
	})
}

// ParseUpload parses an uploaded CSV without importing it and removes the file.
func (s *AudienceService) ParseUpload(path string) ([]map[string]string, error) {
	defer s.cleanup(path)

	records, err := ParseCSVFile(path)
	if err != nil {
		return nil, fmt.Errorf("error processing file: %w", err)
	}
	return records, nil
}

func (s *AudienceService) CreateSegment(ctx context.Context, listID, name string, conditions []mailchimp.SegmentCondition) (*mailchimp.Segment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, appErrors.NewValidation("Segment name is required")
	}

	seg, err := s.Mailchimp.CreateSegment(ctx, listID, mailchimp.SegmentRequest{
		Name: name,
		Options: mailchimp.SegmentOptions{
			Match:      mailchimp.MatchAll,
			Conditions: conditions,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create segment: %w", err)
	}
	return seg, nil
}

// AddMembersToSegment adds each address in order with the same partial-failure
// accounting as the CSV import.
func (s *AudienceService) AddMembersToSegment(ctx context.Context, listID, segmentID string, emails []string) (*model.ImportResult, error) {
	if len(emails) == 0 {
		return nil, appErrors.NewValidation("Array of emails is required")
	}

	result := model.NewImportResult()
	for i, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			result.AddFailure(fmt.Sprintf("row %d: missing email address", i+1))
			continue
		}
		if _, err := s.Mailchimp.AddSegmentMember(ctx, listID, segmentID, email); err != nil {
			result.AddFailure(fmt.Sprintf("error adding %s: %v", email, err))
			continue
		}
		result.AddSuccess()
	}
	return result, nil
}

func (s *AudienceService) cleanup(path string) {
	if err := upload.Remove(path); err != nil {
		s.log().Warn("failed to remove upload", zap.String("path", path), zap.Error(err))
	}
}
