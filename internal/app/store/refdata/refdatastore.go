// internal/app/store/refdata/refdatastore.go
package refdatastore

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateName is returned when creating or renaming a reference entry
// whose folded name already exists in its scope.
var ErrDuplicateName = errors.New("an entry with that name already exists")

// Store manages the admin-curated sports, cities, and areas collections.
// All three are simple name lists; areas are additionally scoped to a city.
type Store struct {
	sports *mongo.Collection
	cities *mongo.Collection
	areas  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		sports: db.Collection("sports"),
		cities: db.Collection("cities"),
		areas:  db.Collection("areas"),
	}
}

// --- Sports ---

func (s *Store) CreateSport(ctx context.Context, name string) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	sport := models.Sport{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.sports.InsertOne(ctx, sport); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateName
		}
		return primitive.NilObjectID, storeerr.Wrap("refdata.CreateSport", err)
	}
	return sport.ID, nil
}

func (s *Store) ListSports(ctx context.Context) ([]models.Sport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.sports.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeerr.Wrap("refdata.ListSports", err)
	}
	defer cur.Close(ctx)

	var sports []models.Sport
	if err := cur.All(ctx, &sports); err != nil {
		return nil, storeerr.Wrap("refdata.ListSports", err)
	}
	return sports, nil
}

func (s *Store) UpdateSport(ctx context.Context, id primitive.ObjectID, name string) error {
	return s.rename(ctx, s.sports, "refdata.UpdateSport", id, bson.M{
		"name": name, "name_ci": text.Fold(name),
	})
}

func (s *Store) DeleteSport(ctx context.Context, id primitive.ObjectID) error {
	return s.remove(ctx, s.sports, "refdata.DeleteSport", id)
}

// --- Cities ---

func (s *Store) CreateCity(ctx context.Context, name string) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	city := models.City{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.cities.InsertOne(ctx, city); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateName
		}
		return primitive.NilObjectID, storeerr.Wrap("refdata.CreateCity", err)
	}
	return city.ID, nil
}

func (s *Store) ListCities(ctx context.Context) ([]models.City, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.cities.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeerr.Wrap("refdata.ListCities", err)
	}
	defer cur.Close(ctx)

	var cities []models.City
	if err := cur.All(ctx, &cities); err != nil {
		return nil, storeerr.Wrap("refdata.ListCities", err)
	}
	return cities, nil
}

func (s *Store) UpdateCity(ctx context.Context, id primitive.ObjectID, name string) error {
	return s.rename(ctx, s.cities, "refdata.UpdateCity", id, bson.M{
		"name": name, "name_ci": text.Fold(name),
	})
}

func (s *Store) DeleteCity(ctx context.Context, id primitive.ObjectID) error {
	return s.remove(ctx, s.cities, "refdata.DeleteCity", id)
}

// --- Areas ---

func (s *Store) CreateArea(ctx context.Context, name, city string) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	area := models.Area{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		City:      city,
		CityCI:    text.Fold(city),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.areas.InsertOne(ctx, area); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateName
		}
		return primitive.NilObjectID, storeerr.Wrap("refdata.CreateArea", err)
	}
	return area.ID, nil
}

func (s *Store) ListAreas(ctx context.Context) ([]models.Area, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.areas.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeerr.Wrap("refdata.ListAreas", err)
	}
	defer cur.Close(ctx)

	var areas []models.Area
	if err := cur.All(ctx, &areas); err != nil {
		return nil, storeerr.Wrap("refdata.ListAreas", err)
	}
	return areas, nil
}

// ListAreasByCity returns the areas whose folded city name matches, for the
// dependent area picker on event and profile forms.
func (s *Store) ListAreasByCity(ctx context.Context, city string) ([]models.Area, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.areas.Find(ctx, bson.M{"city_ci": text.Fold(city)}, opts)
	if err != nil {
		return nil, storeerr.Wrap("refdata.ListAreasByCity", err)
	}
	defer cur.Close(ctx)

	var areas []models.Area
	if err := cur.All(ctx, &areas); err != nil {
		return nil, storeerr.Wrap("refdata.ListAreasByCity", err)
	}
	return areas, nil
}

func (s *Store) UpdateArea(ctx context.Context, id primitive.ObjectID, name, city string) error {
	return s.rename(ctx, s.areas, "refdata.UpdateArea", id, bson.M{
		"name": name, "name_ci": text.Fold(name),
		"city": city, "city_ci": text.Fold(city),
	})
}

func (s *Store) DeleteArea(ctx context.Context, id primitive.ObjectID) error {
	return s.remove(ctx, s.areas, "refdata.DeleteArea", id)
}

// --- shared helpers ---

func (s *Store) rename(ctx context.Context, c *mongo.Collection, op string, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return storeerr.Wrap(op, err)
	}
	if res.MatchedCount == 0 {
		return storeerr.Wrap(op, mongo.ErrNoDocuments)
	}
	return nil
}

func (s *Store) remove(ctx context.Context, c *mongo.Collection, op string, id primitive.ObjectID) error {
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeerr.Wrap(op, err)
	}
	if res.DeletedCount == 0 {
		return storeerr.Wrap(op, mongo.ErrNoDocuments)
	}
	return nil
}
