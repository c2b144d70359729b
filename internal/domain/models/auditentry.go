// internal/domain/models/auditentry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditEntry is one append-only record in the logs collection. Entries are
// written by the membership controller and the admin features and read by the
// admin log viewer; nothing updates them after the fact.
type AuditEntry struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ActorID          *primitive.ObjectID `bson:"actor_uid,omitempty" json:"actor_uid,omitempty"`
	Action           string              `bson:"action" json:"action"`
	TargetCollection string              `bson:"target_collection,omitempty" json:"target_collection,omitempty"`
	TargetID         string              `bson:"target_id,omitempty" json:"target_id,omitempty"`
	Details          map[string]string   `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp        time.Time           `bson:"timestamp" json:"timestamp"`
}
