package controller_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	appErrors "github.com/unclebandit/mailchimp-backend/internal/errors"
	"github.com/unclebandit/mailchimp-backend/internal/mailchimp"
	"github.com/unclebandit/mailchimp-backend/internal/model"
)

// --- Mock remote API ---

type MockMailchimp struct {
	mock.Mock
}

func (m *MockMailchimp) Ping(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockMailchimp) GetAllLists(ctx context.Context) ([]mailchimp.List, error) {
	args := m.Called()
	lists, _ := args.Get(0).([]mailchimp.List)
	return lists, args.Error(1)
}

func (m *MockMailchimp) AddListMember(ctx context.Context, listID string, req mailchimp.MemberRequest) (*mailchimp.Member, error) {
	args := m.Called(listID, req)
	member, _ := args.Get(0).(*mailchimp.Member)
	return member, args.Error(1)
}

func (m *MockMailchimp) CreateSegment(ctx context.Context, listID string, req mailchimp.SegmentRequest) (*mailchimp.Segment, error) {
	args := m.Called(listID, req)
	seg, _ := args.Get(0).(*mailchimp.Segment)
	return seg, args.Error(1)
}

func (m *MockMailchimp) AddSegmentMember(ctx context.Context, listID, segmentID, email string) (*mailchimp.Member, error) {
	args := m.Called(listID, segmentID, email)
	member, _ := args.Get(0).(*mailchimp.Member)
	return member, args.Error(1)
}

func (m *MockMailchimp) CreateCampaign(ctx context.Context, req mailchimp.CampaignRequest) (*mailchimp.Campaign, error) {
	args := m.Called(req)
	c, _ := args.Get(0).(*mailchimp.Campaign)
	return c, args.Error(1)
}

func (m *MockMailchimp) SetCampaignContent(ctx context.Context, campaignID, html string) (*mailchimp.CampaignContent, error) {
	args := m.Called(campaignID, html)
	c, _ := args.Get(0).(*mailchimp.CampaignContent)
	return c, args.Error(1)
}

func (m *MockMailchimp) SendCampaign(ctx context.Context, campaignID string) error {
	return m.Called(campaignID).Error(0)
}

// --- Mock Repositories ---

type MockSubscriberRepo struct {
	mu   sync.Mutex
	subs []model.Subscriber
}

func (m *MockSubscriberRepo) Upsert(ctx context.Context, s *model.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.subs {
		if m.subs[i].Email == s.Email && m.subs[i].ListID == s.ListID {
			s.ID = m.subs[i].ID
			m.subs[i] = *s
			return nil
		}
	}
	s.ID = primitive.NewObjectID()
	m.subs = append(m.subs, *s)
	return nil
}

func (m *MockSubscriberRepo) FindByListID(ctx context.Context, listID string) ([]model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Subscriber{}
	for _, s := range m.subs {
		if s.ListID == listID {
			out = append(out, s)
		}
	}
	return out, nil
}

type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns []*model.Campaign
}

func (m *MockCampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	m.campaigns = append(m.campaigns, c)
	return nil
}

func (m *MockCampaignRepo) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.ID.Hex() == id {
			return c, nil
		}
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

func (m *MockCampaignRepo) ListCampaigns(ctx context.Context, offset, limit int) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := len(m.campaigns)
	if offset > total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return m.campaigns[offset:end], total, nil
}

// --- Request helpers ---

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func multipartRequest(t *testing.T, target, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
