// internal/service/event_worker.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/unclebandit/mailchimp-backend/internal/model"
)

// EventRecorder defines the methods the worker needs
type EventRecorder interface {
	Insert(ctx context.Context, e *model.Event) error
}

// Job is one delivered event plus its acknowledgement callbacks.
type Job struct {
	Event *model.Event
	Ack   func()
	Drop  func()
}

// EventWorker stores delivered events as an audit trail.
type EventWorker struct {
	Recorder EventRecorder
	JobChan  <-chan Job
	Logger   *zap.Logger
}

// Constructor
func NewEventWorker(rec EventRecorder, jobChan <-chan Job, log *zap.Logger) *EventWorker {
	return &EventWorker{
		Recorder: rec,
		JobChan:  jobChan,
		Logger:   orNop(log),
	}
}

// Start processes jobs until the channel closes or ctx is done.
// Failed inserts are dropped, not redelivered.
func (w *EventWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-w.JobChan:
			if !ok {
				return
			}
			w.handle(ctx, job)
		}
	}
}

func (w *EventWorker) handle(ctx context.Context, job Job) {
	if job.Event == nil {
		w.Logger.Warn("⚠️ invalid job, dropping")
		call(job.Ack)
		return
	}

	if err := w.Recorder.Insert(ctx, job.Event); err != nil {
		w.Logger.Error("failed to record event",
			zap.String("event_id", job.Event.EventID),
			zap.String("type", job.Event.Type),
			zap.Error(err))
		call(job.Drop)
		return
	}

	w.Logger.Info("✅ event recorded", zap.String("event_id", job.Event.EventID), zap.String("type", job.Event.Type))
	call(job.Ack)
}

func call(f func()) {
	if f != nil {
		f()
	}
}
