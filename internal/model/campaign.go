// internal/model/campaign.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Campaign struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	Subject     string               `bson:"subject" json:"subject" validate:"required"`
	Content     string               `bson:"content" json:"content" validate:"required"`
	SentDate    time.Time            `bson:"sentDate" json:"sentDate"`
	ListID      string               `bson:"listId" json:"listId" validate:"required"`
	ListName    string               `bson:"listName" json:"listName"`
	RemoteID    string               `bson:"remoteId,omitempty" json:"remoteId,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	Subscribers []primitive.ObjectID `bson:"subscribers" json:"subscribers"`
}
