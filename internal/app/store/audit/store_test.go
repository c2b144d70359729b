package audit_test

import (
	"testing"
	"time"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/sportsbuddy/sportsbuddy/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Record(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	before := time.Now().UTC().Add(-time.Second)
	err := store.Record(ctx, models.AuditEntry{
		ActorID:          &actor,
		Action:           audit.ActionJoinEvent,
		TargetCollection: "events",
		TargetID:         primitive.NewObjectID().Hex(),
		Details:          map[string]string{"event_title": "Sunday Football"},
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	after := time.Now().UTC().Add(time.Second)

	entries, err := store.List(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.ID.IsZero() {
		t.Error("expected generated id")
	}
	if e.Timestamp.Before(before) || e.Timestamp.After(after) {
		t.Errorf("expected timestamp to default to now, got %v", e.Timestamp)
	}
	if e.Details["event_title"] != "Sunday Football" {
		t.Errorf("details not stored: %v", e.Details)
	}
}

func TestStore_Record_SystemActor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Background purges record with no actor.
	err := store.Record(ctx, models.AuditEntry{
		Action:           audit.ActionCleanupEvents,
		TargetCollection: "events",
		Details:          map[string]string{"deleted": "3"},
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := store.List(ctx, audit.QueryFilter{Action: audit.ActionCleanupEvents})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ActorID != nil {
		t.Errorf("expected nil actor, got %v", entries[0].ActorID)
	}
}

func TestStore_List_FiltersAndPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	base := time.Now().UTC().Add(-time.Hour)
	seed := []models.AuditEntry{
		{ActorID: &alice, Action: audit.ActionJoinEvent, TargetCollection: "events", Timestamp: base},
		{ActorID: &alice, Action: audit.ActionLeaveEvent, TargetCollection: "events", Timestamp: base.Add(time.Minute)},
		{ActorID: &bob, Action: audit.ActionJoinEvent, TargetCollection: "events", Timestamp: base.Add(2 * time.Minute)},
		{ActorID: &bob, Action: audit.ActionCreateRefData, TargetCollection: "sports", Timestamp: base.Add(3 * time.Minute)},
	}
	for _, e := range seed {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	byActor, err := store.List(ctx, audit.QueryFilter{ActorID: &alice})
	if err != nil {
		t.Fatalf("List by actor failed: %v", err)
	}
	if len(byActor) != 2 {
		t.Errorf("expected 2 entries for alice, got %d", len(byActor))
	}

	byAction, err := store.List(ctx, audit.QueryFilter{Action: audit.ActionJoinEvent})
	if err != nil {
		t.Fatalf("List by action failed: %v", err)
	}
	if len(byAction) != 2 {
		t.Errorf("expected 2 join entries, got %d", len(byAction))
	}

	byColl, err := store.List(ctx, audit.QueryFilter{TargetCollection: "sports"})
	if err != nil {
		t.Fatalf("List by collection failed: %v", err)
	}
	if len(byColl) != 1 {
		t.Errorf("expected 1 sports entry, got %d", len(byColl))
	}

	start := base.Add(90 * time.Second)
	inRange, err := store.List(ctx, audit.QueryFilter{StartTime: &start})
	if err != nil {
		t.Fatalf("List by time failed: %v", err)
	}
	if len(inRange) != 2 {
		t.Errorf("expected 2 entries after start, got %d", len(inRange))
	}

	page, err := store.List(ctx, audit.QueryFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List page failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	// Newest first, so offset 1 skips the latest entry.
	if page[0].Action != audit.ActionJoinEvent || page[0].ActorID == nil || *page[0].ActorID != bob {
		t.Errorf("unexpected first page entry: %+v", page[0])
	}

	total, err := store.Count(ctx, audit.QueryFilter{Action: audit.ActionJoinEvent})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Count: got %d, want 2", total)
	}
}
