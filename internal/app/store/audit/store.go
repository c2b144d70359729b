// internal/app/store/audit/store.go
package audit

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

// Action tags written by the membership controller and admin features.
const (
	ActionJoinEvent         = "joinEvent"
	ActionAcceptRequest     = "acceptAttendeeRequest"
	ActionRejectRequest     = "rejectAttendeeRequest"
	ActionRejectAfterAccept = "rejectAfterAccept"
	ActionLeaveEvent        = "leaveEvent"
	ActionCreateEvent       = "createEvent"
	ActionUpdateEvent       = "updateEvent"
	ActionDeleteEvent       = "delete_event"
	ActionCleanupEvents     = "cleanupPastEvents"
	ActionCreateRefData     = "createRefData"
	ActionUpdateRefData     = "updateRefData"
	ActionDeleteRefData     = "deleteRefData"
)

// QueryFilter narrows List results for the admin log viewer.
type QueryFilter struct {
	ActorID          *primitive.ObjectID
	Action           string
	TargetCollection string
	StartTime        *time.Time
	EndTime          *time.Time
	Limit            int64
	Offset           int64
}

// Store manages the append-only logs collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("logs")}
}

// EnsureIndexes creates the indexes the log viewer queries need.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "actor_uid", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Record appends one audit entry. Timestamp is set here if the caller left
// it zero.
func (s *Store) Record(ctx context.Context, e models.AuditEntry) error {
	e.ID = primitive.NewObjectID()
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return storeerr.Wrap("audit.Record", err)
}

func (f QueryFilter) query() bson.M {
	filter := bson.M{}
	if f.ActorID != nil {
		filter["actor_uid"] = *f.ActorID
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.TargetCollection != "" {
		filter["target_collection"] = f.TargetCollection
	}
	if f.StartTime != nil || f.EndTime != nil {
		ts := bson.M{}
		if f.StartTime != nil {
			ts["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			ts["$lte"] = *f.EndTime
		}
		filter["timestamp"] = ts
	}
	return filter
}

// List returns entries matching the filter, newest first.
func (s *Store) List(ctx context.Context, f QueryFilter) ([]models.AuditEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Offset > 0 {
		opts.SetSkip(f.Offset)
	}

	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, storeerr.Wrap("audit.List", err)
	}
	defer cur.Close(ctx)

	var entries []models.AuditEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, storeerr.Wrap("audit.List", err)
	}
	return entries, nil
}

// Count returns how many entries match the filter, for pager totals.
// Limit and Offset are ignored here.
func (s *Store) Count(ctx context.Context, f QueryFilter) (int64, error) {
	n, err := s.c.CountDocuments(ctx, f.query())
	if err != nil {
		return 0, storeerr.Wrap("audit.Count", err)
	}
	return n, nil
}
