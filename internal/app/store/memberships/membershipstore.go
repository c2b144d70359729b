// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"time"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds the authoritative per-event membership records. Exactly one
// document exists per (event_id, user_id); a unique index enforces it.
// Absence of a record means "never requested or fully removed".
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("event_memberships")}
}

// Snapshot carries the candidate profile fields frozen onto the record at
// request time.
type Snapshot struct {
	DisplayName string
	Email       string
}

// Get returns the record for (eventID, userID) or storeerr.ErrNotFound.
func (s *Store) Get(ctx context.Context, eventID, userID primitive.ObjectID) (*models.EventMembership, error) {
	var m models.EventMembership
	err := s.c.FindOne(ctx, bson.M{"event_id": eventID, "user_id": userID}).Decode(&m)
	if err != nil {
		return nil, storeerr.Wrap("memberships.Get", err)
	}
	return &m, nil
}

// Upsert creates or overwrites the record for (eventID, userID) with the
// given status and profile snapshot. RequestedAt/JoinedAt are set on insert
// and refreshed on overwrite, matching a repeated join resetting the clock.
func (s *Store) Upsert(ctx context.Context, eventID, userID primitive.ObjectID, status string, snap Snapshot) error {
	now := time.Now().UTC()
	set := bson.M{
		"status":       status,
		"display_name": snap.DisplayName,
		"email":        snap.Email,
		"requested_at": now,
		"joined_at":    now,
	}
	if status == models.MembershipAccepted {
		set["accepted_at"] = now
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"event_id": eventID, "user_id": userID},
	}
	if status != models.MembershipAccepted {
		update["$unset"] = bson.M{"accepted_at": ""}
	}

	_, err := s.c.UpdateOne(ctx,
		bson.M{"event_id": eventID, "user_id": userID},
		update,
		options.Update().SetUpsert(true))
	return storeerr.Wrap("memberships.Upsert", err)
}

// SetAccepted transitions an existing record to accepted and stamps
// AcceptedAt. Missing record reports ErrNotFound.
func (s *Store) SetAccepted(ctx context.Context, eventID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"event_id": eventID, "user_id": userID},
		bson.M{"$set": bson.M{
			"status":      models.MembershipAccepted,
			"accepted_at": time.Now().UTC(),
		}})
	if err != nil {
		return storeerr.Wrap("memberships.SetAccepted", err)
	}
	if res.MatchedCount == 0 {
		return storeerr.Wrap("memberships.SetAccepted", mongo.ErrNoDocuments)
	}
	return nil
}

// Delete removes the record. Deleting a missing record reports ErrNotFound
// so callers can distinguish a no-op leave.
func (s *Store) Delete(ctx context.Context, eventID, userID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return storeerr.Wrap("memberships.Delete", err)
	}
	if res.DeletedCount == 0 {
		return storeerr.Wrap("memberships.Delete", mongo.ErrNoDocuments)
	}
	return nil
}

// List returns all records for the event, optionally filtered by status.
// Consumers do not rely on any ordering.
func (s *Store) List(ctx context.Context, eventID primitive.ObjectID, status string) ([]models.EventMembership, error) {
	filter := bson.M{"event_id": eventID}
	if status != "" {
		filter["status"] = status
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, storeerr.Wrap("memberships.List", err)
	}
	defer cur.Close(ctx)

	var records []models.EventMembership
	if err := cur.All(ctx, &records); err != nil {
		return nil, storeerr.Wrap("memberships.List", err)
	}
	return records, nil
}

// CountPending returns the number of pending requests for the event.
func (s *Store) CountPending(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"event_id": eventID, "status": models.MembershipPending})
	if err != nil {
		return 0, storeerr.Wrap("memberships.CountPending", err)
	}
	return n, nil
}

// ListByUser returns the user's records across events, for the "my events"
// view.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.EventMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, storeerr.Wrap("memberships.ListByUser", err)
	}
	defer cur.Close(ctx)

	var records []models.EventMembership
	if err := cur.All(ctx, &records); err != nil {
		return nil, storeerr.Wrap("memberships.ListByUser", err)
	}
	return records, nil
}
