// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/sportsbuddy/sportsbuddy/internal/app/membership"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is malformed,
// it returns "visitor", "", NilObjectID, false, so ok=true always means a
// valid, authenticated user with a parseable ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// ActorProfile converts the session user into the membership controller's
// Profile. The found flag is false for visitors and corrupt sessions.
func ActorProfile(r *http.Request) (membership.Profile, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return membership.Profile{}, false
	}
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return membership.Profile{}, false
	}
	return membership.Profile{
		ID:    oid,
		Name:  user.Name,
		Email: user.Email,
		Role:  strings.ToLower(user.Role),
	}, true
}
