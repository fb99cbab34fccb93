// internal/model/event.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventImportCompleted = "audience.import.completed"
	EventCampaignSent    = "campaign.sent"
)

// Event is a domain event published after an import or a bulk-send and
// recorded by the worker as an audit trail.
type Event struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EventID    string             `bson:"eventId" json:"event_id"`
	Type       string             `bson:"type" json:"type"`
	ListID     string             `bson:"listId" json:"list_id"`
	CampaignID string             `bson:"campaignId,omitempty" json:"campaign_id,omitempty"`
	Payload    map[string]any     `bson:"payload,omitempty" json:"payload,omitempty"`
	OccurredAt time.Time          `bson:"occurredAt" json:"occurred_at"`
	RecordedAt time.Time          `bson:"recordedAt" json:"-"`
}
