// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifyNewEvent        = "new_event"
	NotifyJoinRequest     = "join_request"
	NotifyRequestAccepted = "request_accepted"
	NotifyRequestRejected = "request_rejected"
)

// Notification is an append-only message to a single user, produced by the
// membership controller and event creation, consumed by the notifications view.
type Notification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Type    string             `bson:"type" json:"type"`
	Title   string             `bson:"title" json:"title"`
	Message string             `bson:"message" json:"message"`

	// Data carries free-form correlation context (event id, event title,
	// actor ids/names). CorrelationID ties together the notifications
	// produced by one logical action.
	Data          map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	CorrelationID string            `bson:"correlation_id,omitempty" json:"correlation_id,omitempty"`

	Read      bool       `bson:"read" json:"read"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	ReadAt    *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
}
