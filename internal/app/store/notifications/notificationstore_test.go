package notificationstore_test

import (
	"errors"
	"testing"
	"time"

	notificationstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/notifications"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/sportsbuddy/sportsbuddy/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_InsertAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	first, err := store.Insert(ctx, models.Notification{
		UserID:  userID,
		Type:    models.NotifyJoinRequest,
		Title:   "New Join Request",
		Message: "Bob wants to join your event",
		Data:    map[string]string{"event_title": "Sunday Football"},
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := store.Insert(ctx, models.Notification{
		UserID:  userID,
		Type:    models.NotifyRequestAccepted,
		Title:   "Request Accepted",
		Message: "You are in",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := store.Insert(ctx, models.Notification{UserID: otherID, Type: models.NotifyNewEvent, Title: "New Event Posted"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	items, err := store.ListByUser(ctx, userID, false)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(items))
	}
	if items[0].ID != second || items[1].ID != first {
		t.Errorf("expected newest first, got %v then %v", items[0].ID, items[1].ID)
	}
	if items[1].Data["event_title"] != "Sunday Football" {
		t.Errorf("data not stored: %v", items[1].Data)
	}
}

func TestStore_MarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	id, err := store.Insert(ctx, models.Notification{UserID: userID, Type: models.NotifyNewEvent, Title: "New Event Posted"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if n, _ := store.CountUnread(ctx, userID); n != 1 {
		t.Errorf("expected 1 unread, got %d", n)
	}

	if err := store.MarkRead(ctx, id, userID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	if n, _ := store.CountUnread(ctx, userID); n != 0 {
		t.Errorf("expected 0 unread, got %d", n)
	}

	items, err := store.ListByUser(ctx, userID, false)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if !items[0].Read || items[0].ReadAt == nil {
		t.Errorf("expected read flag and timestamp, got %+v", items[0])
	}

	unread, err := store.ListByUser(ctx, userID, true)
	if err != nil {
		t.Fatalf("ListByUser unread failed: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("expected no unread items, got %d", len(unread))
	}
}

func TestStore_MarkRead_WrongUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	id, err := store.Insert(ctx, models.Notification{UserID: owner, Type: models.NotifyNewEvent, Title: "New Event Posted"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	err = store.MarkRead(ctx, id, primitive.NewObjectID())
	if !errors.Is(err, storeerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign user, got %v", err)
	}
	if n, _ := store.CountUnread(ctx, owner); n != 1 {
		t.Errorf("notification should remain unread, got %d unread", n)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	id, err := store.Insert(ctx, models.Notification{UserID: owner, Type: models.NotifyNewEvent, Title: "New Event Posted"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := store.Delete(ctx, id, primitive.NewObjectID()); !errors.Is(err, storeerr.ErrNotFound) {
		t.Errorf("foreign delete: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, id, owner); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	items, err := store.ListByUser(ctx, owner, false)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no notifications, got %d", len(items))
	}
}
