// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateEmail is returned when registering with an email that already
// has an account. Enforced by the unique index on email_ci.
var ErrDuplicateEmail = errors.New("a user with that email already exists")

// Store manages user profile documents. The membership core reads profiles
// through this store but never mutates them.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new user and returns its generated ID.
func (s *Store) Create(ctx context.Context, u models.User) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.NameCI = text.Fold(u.Name)
	u.EmailCI = text.Fold(u.Email)
	if u.Role == "" {
		u.Role = "user"
	}
	if u.Status == "" {
		u.Status = "active"
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateEmail
		}
		return primitive.NilObjectID, storeerr.Wrap("users.Create", err)
	}
	return u.ID, nil
}

// GetByID returns the user or storeerr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, storeerr.Wrap("users.GetByID", err)
	}
	return &u, nil
}

// GetByEmail looks up a user by case-folded email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u); err != nil {
		return nil, storeerr.Wrap("users.GetByEmail", err)
	}
	return &u, nil
}

// UpdateProfile overwrites the self-editable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, city, area, skill string, sports []string) error {
	if sports == nil {
		sports = []string{}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"city":       city,
		"area":       area,
		"skill":      skill,
		"sports":     sports,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return storeerr.Wrap("users.UpdateProfile", err)
	}
	if res.MatchedCount == 0 {
		return storeerr.Wrap("users.UpdateProfile", mongo.ErrNoDocuments)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return storeerr.Wrap("users.UpdatePassword", err)
	}
	if res.MatchedCount == 0 {
		return storeerr.Wrap("users.UpdatePassword", mongo.ErrNoDocuments)
	}
	return nil
}

// ListByIDs returns the users for the given ids, keyed by id. Missing ids
// are simply absent from the map.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	result := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeerr.Wrap("users.ListByIDs", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, storeerr.Wrap("users.ListByIDs", err)
		}
		result[u.ID] = u
	}
	return result, cur.Err()
}

// ListIDsExcept returns every active user id except the given one. Used for
// the new-event broadcast notification.
func (s *Store) ListIDsExcept(ctx context.Context, except primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$ne": except}, "status": "active"})
	if err != nil {
		return nil, storeerr.Wrap("users.ListIDsExcept", err)
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var stub struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&stub); err != nil {
			return nil, storeerr.Wrap("users.ListIDsExcept", err)
		}
		ids = append(ids, stub.ID)
	}
	return ids, cur.Err()
}
