// internal/app/store/passwordreset/resetstore.go
package resetstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// TokenLength is the token size in bytes; 32 bytes renders as 64 hex chars.
	TokenLength = 32
	// DefaultExpiry is how long a reset link stays valid.
	DefaultExpiry = time.Hour
)

// Reset is a pending password-reset request. One live record per user;
// requesting a new link invalidates the previous one.
type Reset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Email     string             `bson:"email"`
	Token     string             `bson:"token"`
	ExpiresAt time.Time          `bson:"expires_at"` // TTL index field
	CreatedAt time.Time          `bson:"created_at"`
}

// Store manages password-reset tokens in the password_resets collection.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store. If expiry is zero or negative DefaultExpiry is used.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{c: db.Collection("password_resets"), expiry: expiry}
}

// Expiry returns the configured token lifetime.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// Create issues a fresh reset token for the user, replacing any earlier one,
// and returns the plain token to embed in the emailed link.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, email string) (string, error) {
	if _, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return "", storeerr.Wrap("passwordreset.Create", err)
	}

	now := time.Now().UTC()
	token := generateToken()
	r := Reset{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Email:     email,
		Token:     token,
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return "", storeerr.Wrap("passwordreset.Create", err)
	}
	return token, nil
}

// Peek returns the unexpired record for a token without consuming it.
// Expired or unknown tokens yield storeerr.ErrNotFound.
func (s *Store) Peek(ctx context.Context, token string) (*Reset, error) {
	var r Reset
	err := s.c.FindOne(ctx, bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&r)
	if err != nil {
		return nil, storeerr.Wrap("passwordreset.Peek", err)
	}
	return &r, nil
}

// Consume verifies a token and deletes its record. Each token is single use.
func (s *Store) Consume(ctx context.Context, token string) (*Reset, error) {
	r, err := s.Peek(ctx, token)
	if err != nil {
		return nil, err
	}
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": r.ID}); err != nil {
		return nil, storeerr.Wrap("passwordreset.Consume", err)
	}
	return r, nil
}

// DeleteByUser removes all reset records for a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return storeerr.Wrap("passwordreset.DeleteByUser", err)
	}
	return nil
}

func generateToken() string {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
