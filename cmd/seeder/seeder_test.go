package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/mailchimp-backend/internal/model"
)

type MockSubscriberRepo struct {
	upserted []model.Subscriber
}

func (m *MockSubscriberRepo) Upsert(ctx context.Context, s *model.Subscriber) error {
	if s.Email == "broken@x.com" {
		return errors.New("write failed")
	}
	m.upserted = append(m.upserted, *s)
	return nil
}

func (m *MockSubscriberRepo) FindByListID(ctx context.Context, listID string) ([]model.Subscriber, error) {
	return m.upserted, nil
}

func TestSeed(t *testing.T) {
	repo := &MockSubscriberRepo{}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	res := seed(context.Background(), repo, "L1", []map[string]string{
		{"email": " a@x.com ", "first_name": "A"},
		{"first_name": "NoEmail"},
		{"email": "broken@x.com"},
	}, now)

	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, []string{"row 2: missing email address", "error adding broken@x.com: write failed"}, res.Errors)

	if assert.Len(t, repo.upserted, 1) {
		assert.Equal(t, "a@x.com", repo.upserted[0].Email)
		assert.Equal(t, "L1", repo.upserted[0].ListID)
		assert.Equal(t, now, repo.upserted[0].SubscriptionDate)
	}
}
