// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered SportsBuddy account: regular users and admins.
//
// NOTE:
//   - Event participation is not embedded on User.
//     Use the event_memberships collection to discover a user's events.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"email_ci"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`

	City   string   `bson:"city,omitempty" json:"city,omitempty"`
	Area   string   `bson:"area,omitempty" json:"area,omitempty"`
	Sports []string `bson:"sports,omitempty" json:"sports,omitempty"` // ordered interest list
	Skill  string   `bson:"skill,omitempty" json:"skill,omitempty"`

	Role   string `bson:"role" json:"role"` // user | admin
	Status string `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DisplayName returns the best human-readable name for notification
// and snapshot text. Falls back to the email, then a placeholder.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "A SportsBuddy user"
}
