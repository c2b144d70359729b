package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context. Repeated
// calls accumulate parameters on the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name, email and role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Email:     email,
		EmailCI:   text.Fold(email),
		Role:      role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateUserWithInterests creates a test user with a city and interest list,
// for exercising the request triage categories.
func (f *Fixtures) CreateUserWithInterests(ctx context.Context, name, email, city string, sports []string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Email:     email,
		EmailCI:   text.Fold(email),
		City:      city,
		Sports:    sports,
		Role:      "user",
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, "admin")
}

// CreateEvent creates a test event owned by creatorID, scheduled a day out.
func (f *Fixtures) CreateEvent(ctx context.Context, title, sport, city string, creatorID primitive.ObjectID) models.Event {
	f.t.Helper()
	return f.CreateEventAt(ctx, title, sport, city, creatorID, time.Now().UTC().Add(24*time.Hour))
}

// CreateEventAt creates a test event with an explicit scheduled time.
func (f *Fixtures) CreateEventAt(ctx context.Context, title, sport, city string, creatorID primitive.ObjectID, when time.Time) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	event := models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Sport:     sport,
		City:      city,
		DateTime:  when,
		CreatedBy: creatorID,
		Attendees: []primitive.ObjectID{},
		Accepted:  []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("events").InsertOne(ctx, event)
	if err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}

	return event
}

// CreateMembership creates a membership record linking a user to an event
// with the given status, without touching the event's denormalized arrays.
func (f *Fixtures) CreateMembership(ctx context.Context, eventID primitive.ObjectID, user models.User, status string) models.EventMembership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.EventMembership{
		ID:          primitive.NewObjectID(),
		EventID:     eventID,
		UserID:      user.ID,
		Status:      status,
		DisplayName: user.DisplayName(),
		Email:       user.Email,
		RequestedAt: now,
		JoinedAt:    now,
	}
	if status == models.MembershipAccepted {
		m.AcceptedAt = &now
	}

	_, err := f.db.Collection("event_memberships").InsertOne(ctx, m)
	if err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}

	return m
}

// CreateSport creates a reference sport.
func (f *Fixtures) CreateSport(ctx context.Context, name string) models.Sport {
	f.t.Helper()

	now := time.Now().UTC()
	sport := models.Sport{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("sports").InsertOne(ctx, sport)
	if err != nil {
		f.t.Fatalf("failed to create test sport: %v", err)
	}

	return sport
}

// CreateCity creates a reference city.
func (f *Fixtures) CreateCity(ctx context.Context, name string) models.City {
	f.t.Helper()

	now := time.Now().UTC()
	city := models.City{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("cities").InsertOne(ctx, city)
	if err != nil {
		f.t.Fatalf("failed to create test city: %v", err)
	}

	return city
}

// CreateArea creates a reference area within a city.
func (f *Fixtures) CreateArea(ctx context.Context, name, city string) models.Area {
	f.t.Helper()

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

	_, err := f.db.Collection("areas").InsertOne(ctx, area)
	if err != nil {
		f.t.Fatalf("failed to create test area: %v", err)
	}

	return area
}
