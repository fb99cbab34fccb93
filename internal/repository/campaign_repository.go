package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appErrors "github.com/unclebandit/mailchimp-backend/internal/errors"
	"github.com/unclebandit/mailchimp-backend/internal/model"
)

const CampaignCollection = "campaigns"

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, offset, limit int) ([]*model.Campaign, int, error)
}

type CampaignRepository struct {
	Coll *mongo.Collection
}

func NewCampaignRepository(db *mongo.Database) *CampaignRepository {
	return &CampaignRepository{Coll: db.Collection(CampaignCollection)}
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.SentDate.IsZero() {
		c.SentDate = now
	}
	if c.Subscribers == nil {
		c.Subscribers = []primitive.ObjectID{}
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}

	_, err := r.Coll.InsertOne(ctx, c)
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}

	var c model.Campaign
	if err := r.Coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

// ListCampaigns returns one page, newest first, and the total count.
func (r *CampaignRepository) ListCampaigns(ctx context.Context, offset, limit int) ([]*model.Campaign, int, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.Coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	campaigns := []*model.Campaign{}
	for cursor.Next(ctx) {
		c := &model.Campaign{}
		if err := cursor.Decode(c); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}

	// Count total
	total, err := r.Coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	return campaigns, int(total), nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
