package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unclebandit/mailchimp-backend/internal/config"
)

// SubscriberIndexes returns the index models for the given uniqueness scope.
// "list" keys uniqueness on (email, listId); "global" on email alone.
func SubscriberIndexes(scope string) []mongo.IndexModel {
	listIdx := mongo.IndexModel{Keys: bson.D{{Key: "listId", Value: 1}}}

	if scope == config.UniqueScopeGlobal {
		return []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
			listIdx,
		}
	}
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "listId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_listId_unique"),
		},
		listIdx,
	}
}

// EnsureIndexes creates the indexes the store relies on. Safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database, scope string) error {
	if _, err := db.Collection(SubscriberCollection).Indexes().CreateMany(ctx, SubscriberIndexes(scope)); err != nil {
		return fmt.Errorf("subscriber indexes: %w", err)
	}

	campaignIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "listId", Value: 1}}},
	}
	if _, err := db.Collection(CampaignCollection).Indexes().CreateMany(ctx, campaignIdx); err != nil {
		return fmt.Errorf("campaign indexes: %w", err)
	}

	eventIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "eventId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection(EventCollection).Indexes().CreateOne(ctx, eventIdx); err != nil {
		return fmt.Errorf("event indexes: %w", err)
	}
	return nil
}
