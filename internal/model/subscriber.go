// internal/model/subscriber.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusSubscribed   = "subscribed"
	StatusUnsubscribed = "unsubscribed"
	StatusCleaned      = "cleaned"
	StatusPending      = "pending"
)

type Subscriber struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email            string             `bson:"email" json:"email"`
	FirstName        string             `bson:"firstName" json:"firstName"`
	LastName         string             `bson:"lastName" json:"lastName"`
	ListID           string             `bson:"listId" json:"listId"`
	SubscriptionDate time.Time          `bson:"subscriptionDate" json:"subscriptionDate"`
	Status           string             `bson:"status" json:"status"` // subscribed, unsubscribed, cleaned, pending
}

// ValidStatus reports whether s is one of the accepted subscriber statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusSubscribed, StatusUnsubscribed, StatusCleaned, StatusPending:
		return true
	}
	return false
}
