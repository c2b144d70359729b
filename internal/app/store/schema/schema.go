// internal/app/store/schema/schema.go
package schema

import (
	"context"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates every index the stores depend on. Safe to call on
// every startup; Mongo treats re-creation of an identical index as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email_ci", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		"events": {
			{Keys: bson.D{{Key: "date_time", Value: 1}}},
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
			{Keys: bson.D{{Key: "sport", Value: 1}, {Key: "city", Value: 1}}},
		},
		"event_memberships": {
			{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
		},
		"sports": {
			{Keys: bson.D{{Key: "name_ci", Value: 1}}, Options: unique},
		},
		"cities": {
			{Keys: bson.D{{Key: "name_ci", Value: 1}}, Options: unique},
		},
		"areas": {
			{Keys: bson.D{{Key: "city_ci", Value: 1}, {Key: "name_ci", Value: 1}}, Options: unique},
		},
		"password_resets": {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}

	return audit.New(db).EnsureIndexes(ctx)
}
