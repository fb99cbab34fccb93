package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appErrors "github.com/unclebandit/mailchimp-backend/internal/errors"
	"github.com/unclebandit/mailchimp-backend/internal/model"
)

const SubscriberCollection = "subscribers"

// SubscriberRepositoryInterface defines methods used by services
type SubscriberRepositoryInterface interface {
	Upsert(ctx context.Context, s *model.Subscriber) error
	FindByListID(ctx context.Context, listID string) ([]model.Subscriber, error)
}

// SubscriberRepository is the Mongo implementation
type SubscriberRepository struct {
	Coll *mongo.Collection
}

func NewSubscriberRepository(db *mongo.Database) *SubscriberRepository {
	return &SubscriberRepository{Coll: db.Collection(SubscriberCollection)}
}

// Upsert creates or updates the document keyed by (email, listId) and
// fills s.ID with the stored document's id.
func (r *SubscriberRepository) Upsert(ctx context.Context, s *model.Subscriber) error {
	if s.Status == "" {
		s.Status = model.StatusSubscribed
	}
	if !model.ValidStatus(s.Status) {
		return appErrors.NewValidation("invalid subscriber status %q", s.Status)
	}
	if s.SubscriptionDate.IsZero() {
		s.SubscriptionDate = time.Now()
	}

	filter := bson.M{"email": s.Email, "listId": s.ListID}
	update := bson.M{"$set": bson.M{
		"firstName":        s.FirstName,
		"lastName":         s.LastName,
		"status":           s.Status,
		"subscriptionDate": s.SubscriptionDate,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored model.Subscriber
	if err := r.Coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return err
	}
	s.ID = stored.ID
	return nil
}

// FindByListID returns every local subscriber of listID in insertion order.
func (r *SubscriberRepository) FindByListID(ctx context.Context, listID string) ([]model.Subscriber, error) {
	cursor, err := r.Coll.Find(ctx, bson.M{"listId": listID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	subscribers := []model.Subscriber{}
	if err := cursor.All(ctx, &subscribers); err != nil {
		return nil, err
	}
	return subscribers, nil
}

var _ SubscriberRepositoryInterface = (*SubscriberRepository)(nil)
