// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a single organized sporting meetup.
//
// Attendees and Accepted are denormalized fast-lookup copies of the
// event_memberships collection: Attendees holds every user with an active
// (pending or accepted) membership record, Accepted the subset whose request
// was approved. The membership records are authoritative; these arrays are a
// cache kept eventually consistent by the membership controller and repairable
// via its Reconcile operation.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Sport       string             `bson:"sport" json:"sport"`
	City        string             `bson:"city" json:"city"`
	Area        string             `bson:"area,omitempty" json:"area,omitempty"`
	Skill       string             `bson:"skill,omitempty" json:"skill,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	DateTime    time.Time          `bson:"date_time" json:"date_time"`

	// CreatedBy is immutable after creation and never appears in
	// Attendees or Accepted.
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`

	Attendees []primitive.ObjectID `bson:"attendees" json:"attendees"`
	Accepted  []primitive.ObjectID `bson:"accepted" json:"accepted"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasAttendee reports whether uid is in the denormalized attendee list.
func (e Event) HasAttendee(uid primitive.ObjectID) bool {
	for _, id := range e.Attendees {
		if id == uid {
			return true
		}
	}
	return false
}

// HasAccepted reports whether uid is in the denormalized accepted list.
func (e Event) HasAccepted(uid primitive.ObjectID) bool {
	for _, id := range e.Accepted {
		if id == uid {
			return true
		}
	}
	return false
}
