// internal/app/store/notifications/notificationstore.go
package notificationstore

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

// Store manages the append-only notifications collection. The membership
// controller and event creation write here through the notify dispatcher;
// the notifications view reads, marks read, and deletes.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Insert appends a notification. CreatedAt and Read are set here.
func (s *Store) Insert(ctx context.Context, n models.Notification) (primitive.ObjectID, error) {
	n.ID = primitive.NewObjectID()
	n.Read = false
	n.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return primitive.NilObjectID, storeerr.Wrap("notifications.Insert", err)
	}
	return n.ID, nil
}

// ListByUser returns the user's notifications, newest first. With unreadOnly
// set, read notifications are filtered out.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeerr.Wrap("notifications.ListByUser", err)
	}
	defer cur.Close(ctx)

	var items []models.Notification
	if err := cur.All(ctx, &items); err != nil {
		return nil, storeerr.Wrap("notifications.ListByUser", err)
	}
	return items, nil
}

// CountUnread returns the badge count for the user.
func (s *Store) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, storeerr.Wrap("notifications.CountUnread", err)
	}
	return n, nil
}

// MarkRead flags the notification read and stamps ReadAt. Scoped to the
// owning user so one user cannot mark another's notifications.
func (s *Store) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true, "read_at": time.Now().UTC()}})
	if err != nil {
		return storeerr.Wrap("notifications.MarkRead", err)
	}
	if res.MatchedCount == 0 {
		return storeerr.Wrap("notifications.MarkRead", mongo.ErrNoDocuments)
	}
	return nil
}

// Delete removes the notification, scoped to the owning user.
func (s *Store) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return storeerr.Wrap("notifications.Delete", err)
	}
	if res.DeletedCount == 0 {
		return storeerr.Wrap("notifications.Delete", mongo.ErrNoDocuments)
	}
	return nil
}
