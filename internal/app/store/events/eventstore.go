// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"time"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides Event documents plus the denormalized attendees/accepted
// arrays the list views read. The arrays are a cache of the memberships
// collection; each array update here is single-document atomic, but a
// membership write paired with an array update is not one transaction.
type Store struct {
	c           *mongo.Collection
	memberships *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:           db.Collection("events"),
		memberships: db.Collection("event_memberships"),
	}
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Sport     string
	City      string
	CreatedBy primitive.ObjectID
}

// Create inserts a new event with empty attendee/accepted sets and returns
// its generated ID.
func (s *Store) Create(ctx context.Context, ev models.Event) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	ev.ID = primitive.NewObjectID()
	ev.TitleCI = text.Fold(ev.Title)
	ev.Attendees = []primitive.ObjectID{}
	ev.Accepted = []primitive.ObjectID{}
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		return primitive.NilObjectID, storeerr.Wrap("events.Create", err)
	}
	return ev.ID, nil
}

// GetByID returns the event or storeerr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var ev models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ev); err != nil {
		return nil, storeerr.Wrap("events.GetByID", err)
	}
	return &ev, nil
}

// List returns events matching the filter, soonest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Event, error) {
	filter := bson.M{}
	if f.Sport != "" {
		filter["sport"] = f.Sport
	}
	if f.City != "" {
		filter["city"] = f.City
	}
	if !f.CreatedBy.IsZero() {
		filter["created_by"] = f.CreatedBy
	}

	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeerr.Wrap("events.List", err)
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, storeerr.Wrap("events.List", err)
	}
	return events, nil
}

// Update overwrites the caller-editable fields. CreatedBy and the
// denormalized arrays are never touched here.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, ev models.Event) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":       ev.Title,
		"title_ci":    text.Fold(ev.Title),
		"sport":       ev.Sport,
		"city":        ev.City,
		"area":        ev.Area,
		"skill":       ev.Skill,
		"description": ev.Description,
		"date_time":   ev.DateTime,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return storeerr.Wrap("events.Update", err)
	}
	if res.MatchedCount == 0 {
		return storeerr.Wrap("events.Update", mongo.ErrNoDocuments)
	}
	return nil
}

// Delete removes the event and cascades to its membership records, the
// equivalent of the records living under the event's own namespace.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeerr.Wrap("events.Delete", err)
	}
	if res.DeletedCount == 0 {
		return storeerr.Wrap("events.Delete", mongo.ErrNoDocuments)
	}
	if _, err := s.memberships.DeleteMany(ctx, bson.M{"event_id": id}); err != nil {
		return storeerr.Wrap("events.Delete cascade", err)
	}
	return nil
}

// DeletePastEvents removes every event whose date precedes cutoff, cascading
// membership records per event. Returns how many events were deleted.
func (s *Store) DeletePastEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	cur, err := s.c.Find(ctx, bson.M{"date_time": bson.M{"$lt": cutoff}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, storeerr.Wrap("events.DeletePastEvents", err)
	}
	defer cur.Close(ctx)

	var stubs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &stubs); err != nil {
		return 0, storeerr.Wrap("events.DeletePastEvents", err)
	}
	if len(stubs) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, 0, len(stubs))
	for _, st := range stubs {
		ids = append(ids, st.ID)
	}

	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, storeerr.Wrap("events.DeletePastEvents", err)
	}
	if _, err := s.memberships.DeleteMany(ctx, bson.M{"event_id": bson.M{"$in": ids}}); err != nil {
		return res.DeletedCount, storeerr.Wrap("events.DeletePastEvents cascade", err)
	}
	return res.DeletedCount, nil
}

// AddToAttendees adds userID to the event's attendee set ($addToSet keeps
// the array a set). Missing event reports ErrNotFound.
func (s *Store) AddToAttendees(ctx context.Context, eventID, userID primitive.ObjectID) error {
	return s.setOp(ctx, "events.AddToAttendees", eventID, bson.M{"$addToSet": bson.M{"attendees": userID}})
}

// RemoveFromAttendees removes userID from the event's attendee set.
func (s *Store) RemoveFromAttendees(ctx context.Context, eventID, userID primitive.ObjectID) error {
	return s.setOp(ctx, "events.RemoveFromAttendees", eventID, bson.M{"$pull": bson.M{"attendees": userID}})
}

// AddToAccepted adds userID to the event's accepted set.
func (s *Store) AddToAccepted(ctx context.Context, eventID, userID primitive.ObjectID) error {
	return s.setOp(ctx, "events.AddToAccepted", eventID, bson.M{"$addToSet": bson.M{"accepted": userID}})
}

// RemoveFromAccepted removes userID from the event's accepted set.
func (s *Store) RemoveFromAccepted(ctx context.Context, eventID, userID primitive.ObjectID) error {
	return s.setOp(ctx, "events.RemoveFromAccepted", eventID, bson.M{"$pull": bson.M{"accepted": userID}})
}

// ReplaceSets rewrites both denormalized arrays in one update. Used by the
// controller's Reconcile repair.
func (s *Store) ReplaceSets(ctx context.Context, eventID primitive.ObjectID, attendees, accepted []primitive.ObjectID) error {
	if attendees == nil {
		attendees = []primitive.ObjectID{}
	}
	if accepted == nil {
		accepted = []primitive.ObjectID{}
	}
	return s.setOp(ctx, "events.ReplaceSets", eventID, bson.M{"$set": bson.M{
		"attendees":  attendees,
		"accepted":   accepted,
		"updated_at": time.Now().UTC(),
	}})
}

func (s *Store) setOp(ctx context.Context, op string, eventID primitive.ObjectID, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": eventID}, update)
	if err != nil {
		return storeerr.Wrap(op, err)
	}
	if res.MatchedCount == 0 {
		return storeerr.Wrap(op, mongo.ErrNoDocuments)
	}
	return nil
}
