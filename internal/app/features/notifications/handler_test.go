// internal/app/features/notifications/handler_test.go
package notifications_test

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	errorsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	"github.com/sportsbuddy/sportsbuddy/internal/app/features/notifications"
	notificationstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/notifications"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/sportsbuddy/sportsbuddy/internal/testutil"
)

func newTestHandler(t *testing.T) (*notifications.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return notifications.NewHandler(db, errorsfeature.NewErrorLogger(logger), logger), db
}

func TestHandleMarkRead_OwnerOnly(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")
	other := fx.CreateUser(ctx, "Ben", "ben@example.com", "user")

	store := notificationstore.New(db)
	id, err := store.Insert(ctx, models.Notification{
		UserID:  owner.ID,
		Type:    models.NotifyNewEvent,
		Title:   "New Event Posted",
		Message: "Someone posted an event.",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// Another user's mark-read must not flip the record.
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/notifications/"+id.Hex()+"/read",
		testutil.UserFor(other.ID, other.Name, other.Email, "user"))
	req = testutil.WithChiURLParam(req, "id", id.Hex())
	rec := testutil.NewRecorder()
	h.HandleMarkRead(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/notifications")

	if n, err := store.CountUnread(ctx, owner.ID); err != nil || n != 1 {
		t.Fatalf("unread after foreign mark-read: got %d (err %v), want 1", n, err)
	}

	// The owner's mark-read does.
	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/notifications/"+id.Hex()+"/read",
		testutil.UserFor(owner.ID, owner.Name, owner.Email, "user"))
	req = testutil.WithChiURLParam(req, "id", id.Hex())
	rec = testutil.NewRecorder()
	h.HandleMarkRead(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/notifications")

	if n, err := store.CountUnread(ctx, owner.ID); err != nil || n != 0 {
		t.Fatalf("unread after owner mark-read: got %d (err %v), want 0", n, err)
	}
}

func TestHandleDelete_RemovesOwnRecord(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")

	store := notificationstore.New(db)
	id, err := store.Insert(ctx, models.Notification{
		UserID:  owner.ID,
		Type:    models.NotifyJoinRequest,
		Title:   "New Join Request",
		Message: "Ben wants to join.",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/notifications/"+id.Hex()+"/delete",
		testutil.UserFor(owner.ID, owner.Name, owner.Email, "user"))
	req = testutil.WithChiURLParam(req, "id", id.Hex())
	rec := testutil.NewRecorder()
	h.HandleDelete(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/notifications")

	list, err := store.ListByUser(ctx, owner.ID, false)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("notifications after delete: got %d, want 0", len(list))
	}
}
