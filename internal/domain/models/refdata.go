// internal/domain/models/refdata.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sport is a reference-data entry managed by admins and offered in event
// forms and profile interest pickers.
type Sport struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"name_ci"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// City is a reference-data entry.
type City struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"name_ci"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Area is a reference-data entry scoped to a city by name.
type Area struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"name_ci"`
	City      string             `bson:"city" json:"city"`
	CityCI    string             `bson:"city_ci" json:"city_ci"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
