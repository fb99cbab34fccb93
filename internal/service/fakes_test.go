package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	appErrors "github.com/unclebandit/mailchimp-backend/internal/errors"
	"github.com/unclebandit/mailchimp-backend/internal/mailchimp"
	"github.com/unclebandit/mailchimp-backend/internal/model"
)

// fakeMailchimp records every call and fails the ones configured in failFor.
type fakeMailchimp struct {
	mu      sync.Mutex
	calls   []string
	members []mailchimp.MemberRequest
	subject string           // last campaign subject line
	content string           // last campaign html
	failFor map[string]error // keyed by email for member calls, by step name for campaign calls
}

func newFakeMailchimp() *fakeMailchimp {
	return &fakeMailchimp{failFor: map[string]error{}}
}

func (f *fakeMailchimp) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeMailchimp) Ping(ctx context.Context) error {
	f.record("ping")
	return f.failFor["ping"]
}

func (f *fakeMailchimp) GetAllLists(ctx context.Context) ([]mailchimp.List, error) {
	f.record("lists")
	if err := f.failFor["lists"]; err != nil {
		return nil, err
	}
	return []mailchimp.List{{ID: "L1", Name: "Newsletter", Stats: mailchimp.ListStats{MemberCount: 2}}}, nil
}

func (f *fakeMailchimp) AddListMember(ctx context.Context, listID string, m mailchimp.MemberRequest) (*mailchimp.Member, error) {
	f.record("member:" + m.EmailAddress)
	if err := f.failFor[m.EmailAddress]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.members = append(f.members, m)
	f.mu.Unlock()
	return &mailchimp.Member{ID: "h-" + m.EmailAddress, EmailAddress: m.EmailAddress, Status: m.Status, ListID: listID}, nil
}

func (f *fakeMailchimp) CreateSegment(ctx context.Context, listID string, s mailchimp.SegmentRequest) (*mailchimp.Segment, error) {
	f.record("segment:" + s.Name)
	if err := f.failFor["segment"]; err != nil {
		return nil, err
	}
	return &mailchimp.Segment{ID: 1, Name: s.Name, ListID: listID}, nil
}

func (f *fakeMailchimp) AddSegmentMember(ctx context.Context, listID, segmentID, email string) (*mailchimp.Member, error) {
	f.record("segment-member:" + email)
	if err := f.failFor[email]; err != nil {
		return nil, err
	}
	return &mailchimp.Member{EmailAddress: email, ListID: listID}, nil
}

func (f *fakeMailchimp) CreateCampaign(ctx context.Context, req mailchimp.CampaignRequest) (*mailchimp.Campaign, error) {
	f.record("create")
	f.mu.Lock()
	f.subject = req.Settings.SubjectLine
	f.mu.Unlock()
	if err := f.failFor["create"]; err != nil {
		return nil, err
	}
	return &mailchimp.Campaign{ID: "cmp-1", Type: req.Type, Status: "save"}, nil
}

func (f *fakeMailchimp) SetCampaignContent(ctx context.Context, campaignID, html string) (*mailchimp.CampaignContent, error) {
	f.record("content:" + campaignID)
	f.mu.Lock()
	f.content = html
	f.mu.Unlock()
	if err := f.failFor["content"]; err != nil {
		return nil, err
	}
	return &mailchimp.CampaignContent{HTML: html}, nil
}

func (f *fakeMailchimp) SendCampaign(ctx context.Context, campaignID string) error {
	f.record("send:" + campaignID)
	return f.failFor["send"]
}

// memSubscriberRepo mirrors the (email, listId) upsert of the Mongo repository.
type memSubscriberRepo struct {
	mu      sync.Mutex
	docs    map[string]*model.Subscriber
	order   []string
	failFor map[string]error
}

func newMemSubscriberRepo() *memSubscriberRepo {
	return &memSubscriberRepo{docs: map[string]*model.Subscriber{}, failFor: map[string]error{}}
}

func (m *memSubscriberRepo) Upsert(ctx context.Context, s *model.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[s.Email]; err != nil {
		return err
	}

	key := s.Email + "|" + s.ListID
	if existing, ok := m.docs[key]; ok {
		s.ID = existing.ID
	} else {
		s.ID = primitive.NewObjectID()
		m.order = append(m.order, key)
	}
	cp := *s
	m.docs[key] = &cp
	return nil
}

func (m *memSubscriberRepo) FindByListID(ctx context.Context, listID string) ([]model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor["find"]; err != nil {
		return nil, err
	}
	out := []model.Subscriber{}
	for _, key := range m.order {
		if d := m.docs[key]; d.ListID == listID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memSubscriberRepo) get(email, listID string) *model.Subscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[email+"|"+listID]
}

func (m *memSubscriberRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

type memCampaignRepo struct {
	mu        sync.Mutex
	campaigns []*model.Campaign
	failWith  error
}

func (m *memCampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	m.campaigns = append(m.campaigns, c)
	return nil
}

func (m *memCampaignRepo) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.ID.Hex() == id {
			return c, nil
		}
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

func (m *memCampaignRepo) ListCampaigns(ctx context.Context, offset, limit int) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := append([]*model.Campaign(nil), m.campaigns...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	total := len(sorted)
	if offset > total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return sorted[offset:end], total, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e *model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

var errRemote = errors.New("Member Exists: already a list member")

func providerError(status int, detail string) error {
	return &mailchimp.APIError{Status: status, Title: fmt.Sprintf("HTTP %d", status), Detail: detail}
}
