package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unclebandit/mailchimp-backend/internal/model"
)

const EventCollection = "events"

type EventRepository struct {
	Coll *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{Coll: db.Collection(EventCollection)}
}

// Insert records an event, stamping RecordedAt.
func (r *EventRepository) Insert(ctx context.Context, e *model.Event) error {
	e.RecordedAt = time.Now()
	_, err := r.Coll.InsertOne(ctx, e)
	return err
}
