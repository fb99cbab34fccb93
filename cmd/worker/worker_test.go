package main

import (
	"context"
	"sync"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/unclebandit/mailchimp-backend/internal/model"
	"github.com/unclebandit/mailchimp-backend/internal/service"
)

// MockAcknowledger records how each delivery was settled
type MockAcknowledger struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (m *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, tag)
	return nil
}

func (m *MockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nacked = append(m.nacked, tag)
	m.requeue = append(m.requeue, requeue)
	return nil
}

func (m *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	return m.Nack(tag, false, requeue)
}

// MockEventRepo stores events in memory, failing for one event id
type MockEventRepo struct {
	mu     sync.Mutex
	events map[string]*model.Event
	failID string
}

func (m *MockEventRepo) Insert(ctx context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.EventID == m.failID {
		return assert.AnError
	}
	m.events[e.EventID] = e
	return nil
}

func TestToJobDecodesEvent(t *testing.T) {
	ack := &MockAcknowledger{}
	d := amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		MessageId:    "e1",
		Body:         []byte(`{"type":"campaign.sent","list_id":"L1","campaign_id":"cmp-1"}`),
	}

	job := toJob(d, zap.NewNop())
	if assert.NotNil(t, job.Event) {
		assert.Equal(t, "e1", job.Event.EventID)
		assert.Equal(t, model.EventCampaignSent, job.Event.Type)
	}

	job.Drop()
	assert.Equal(t, []uint64{1}, ack.nacked)
	assert.Equal(t, []bool{false}, ack.requeue)
}

func TestToJobMalformed(t *testing.T) {
	ack := &MockAcknowledger{}
	job := toJob(amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte("{nope")}, zap.NewNop())

	assert.Nil(t, job.Event)
	job.Ack()
	assert.Equal(t, []uint64{3}, ack.acked)
}

func TestWorker(t *testing.T) {
	ack := &MockAcknowledger{}
	repo := &MockEventRepo{events: map[string]*model.Event{}, failID: "bad"}

	msgs := make(chan amqp.Delivery, 3)
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{"event_id":"good","type":"campaign.sent"}`)}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte(`{"event_id":"bad","type":"campaign.sent"}`)}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte(`not json`)}
	close(msgs)

	jobs := make(chan service.Job)
	go feed(context.Background(), msgs, jobs, zap.NewNop())

	// Start blocks until feed closes jobs.
	service.NewEventWorker(repo, jobs, zap.NewNop()).Start(context.Background())

	assert.Contains(t, repo.events, "good")
	assert.NotContains(t, repo.events, "bad")
	assert.ElementsMatch(t, []uint64{1, 3}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.nacked)
	assert.Equal(t, []bool{false}, ack.requeue)
}
