package queue

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/unclebandit/mailchimp-backend/internal/model"
)

// Publisher delivers domain events. Implementations never retry.
type Publisher interface {
	Publish(ctx context.Context, e *model.Event) error
}

// Handler consumes one event.
type Handler func(ctx context.Context, e *model.Event) error

// InMemoryQueue dispatches events to in-process subscribers. Used when no broker is configured.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers []Handler
	wg       sync.WaitGroup
	log      *zap.Logger
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(log *zap.Logger) *InMemoryQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryQueue{log: log}
}

// Publish hands the event to every subscriber on its own goroutine.
func (q *InMemoryQueue) Publish(ctx context.Context, e *model.Event) error {
	q.mu.Lock()
	handlers := append([]Handler(nil), q.handlers...)
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for event %s", e.Type)
	}

	for _, h := range handlers {
		q.wg.Add(1)
		go func(h Handler) {
			defer q.wg.Done()
			// detached: the request that published may already be finished
			if err := h(context.Background(), e); err != nil {
				q.log.Warn("event handler failed",
					zap.String("event_id", e.EventID),
					zap.String("type", e.Type),
					zap.Error(err))
			}
		}(h)
	}
	return nil
}

// Subscribe adds a handler for all events
func (q *InMemoryQueue) Subscribe(h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, h)
}

// Wait blocks until in-flight handlers return.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}

// LogHandler writes every event to log.
func LogHandler(log *zap.Logger) Handler {
	return func(_ context.Context, e *model.Event) error {
		log.Info("📩 event",
			zap.String("event_id", e.EventID),
			zap.String("type", e.Type),
			zap.String("list_id", e.ListID),
			zap.String("campaign_id", e.CampaignID),
			zap.Any("payload", e.Payload))
		return nil
	}
}

var _ Publisher = (*InMemoryQueue)(nil)
