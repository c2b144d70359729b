// internal/domain/models/eventmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership statuses. There is no persisted "rejected" status: rejection and
// leaving both delete the record, so absence means "never requested or fully
// removed".
const (
	MembershipPending  = "pending"
	MembershipAccepted = "accepted"
)

// EventMembership is the authoritative join-request record between a user and
// an event. Exactly one document per (event_id, user_id).
//
// DisplayName and Email are snapshots of the candidate's profile taken at
// request time; they are not live-updated when the profile changes.
type EventMembership struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status  string             `bson:"status" json:"status"` // "pending" | "accepted"

	DisplayName string `bson:"display_name" json:"display_name"`
	Email       string `bson:"email,omitempty" json:"email,omitempty"`

	RequestedAt time.Time  `bson:"requested_at" json:"requested_at"`
	JoinedAt    time.Time  `bson:"joined_at" json:"joined_at"`
	AcceptedAt  *time.Time `bson:"accepted_at,omitempty" json:"accepted_at,omitempty"`
}
