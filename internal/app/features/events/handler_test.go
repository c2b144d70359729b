// internal/app/features/events/handler_test.go
package events_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	errorsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	"github.com/sportsbuddy/sportsbuddy/internal/app/features/events"
	"github.com/sportsbuddy/sportsbuddy/internal/app/membership"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	eventstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/events"
	membershipstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/memberships"
	notificationstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/notifications"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auditlog"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/notify"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/sportsbuddy/sportsbuddy/internal/testutil"
)

type testEnv struct {
	db       *mongo.Database
	handler  *events.Handler
	notifier *notify.Notifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	logger := zap.NewNop()
	notifier := notify.New(notificationstore.New(db), logger)
	notifier.Start()
	t.Cleanup(notifier.Stop)

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{Mode: "db"})
	controller := membership.New(membershipstore.New(db), eventstore.New(db), notifier, auditLog, logger)
	errLog := errorsfeature.NewErrorLogger(logger)

	return &testEnv{
		db:       db,
		handler:  events.NewHandler(db, controller, notifier, auditLog, errLog, logger),
		notifier: notifier,
	}
}

func formRequest(target string, values url.Values, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func TestHandleCreate_PersistsAndRedirects(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, env.db)
	creator := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")

	when := time.Now().Add(48 * time.Hour)
	form := url.Values{
		"title":       {"Sunday Football"},
		"sport":       {"Football"},
		"city":        {"Mumbai"},
		"area":        {"Andheri"},
		"skill":       {"intermediate"},
		"description": {"Friendly 5-a-side. <script>alert(1)</script>"},
		"date_time":   {when.Format("2006-01-02T15:04")},
	}
	req := formRequest("/events/new", form, testutil.UserFor(creator.ID, creator.Name, creator.Email, "user"))
	rec := testutil.NewRecorder()

	env.handler.HandleCreate(rec.ResponseRecorder, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d (body %q)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/events/") {
		t.Fatalf("redirect location: got %q", loc)
	}

	eventID, err := primitive.ObjectIDFromHex(strings.TrimPrefix(loc, "/events/"))
	if err != nil {
		t.Fatalf("redirect id: %v", err)
	}
	ev, err := eventstore.New(env.db).GetByID(ctx, eventID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ev.Title != "Sunday Football" || ev.Sport != "Football" || ev.City != "Mumbai" {
		t.Errorf("stored event mismatch: %+v", ev)
	}
	if ev.CreatedBy != creator.ID {
		t.Errorf("CreatedBy: got %s, want %s", ev.CreatedBy.Hex(), creator.ID.Hex())
	}
	if strings.Contains(ev.Description, "<script>") {
		t.Errorf("description not sanitized: %q", ev.Description)
	}
}

func TestHandleCreate_BroadcastsToOtherUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, env.db)
	creator := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")
	other := fx.CreateUser(ctx, "Ben", "ben@example.com", "user")

	when := time.Now().Add(24 * time.Hour)
	form := url.Values{
		"title":     {"Morning Run"},
		"sport":     {"Running"},
		"city":      {"Pune"},
		"date_time": {when.Format("2006-01-02T15:04")},
	}
	req := formRequest("/events/new", form, testutil.UserFor(creator.ID, creator.Name, creator.Email, "user"))
	rec := testutil.NewRecorder()

	env.handler.HandleCreate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusSeeOther)

	env.notifier.Stop()

	store := notificationstore.New(env.db)
	list, err := store.ListByUser(ctx, other.ID, false)
	if err != nil {
		t.Fatalf("ListByUser(other): %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("other user's notifications: got %d, want 1", len(list))
	}
	if list[0].Type != models.NotifyNewEvent {
		t.Errorf("type: got %q, want %q", list[0].Type, models.NotifyNewEvent)
	}
	if !strings.Contains(list[0].Message, "Morning Run") {
		t.Errorf("message missing event title: %q", list[0].Message)
	}

	mine, err := store.ListByUser(ctx, creator.ID, false)
	if err != nil {
		t.Fatalf("ListByUser(creator): %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("creator notified about own event: %d messages", len(mine))
	}
}

func TestHandleJoin_FilesPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, env.db)
	creator := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")
	joiner := fx.CreateUser(ctx, "Ben", "ben@example.com", "user")
	ev := fx.CreateEvent(ctx, "Box Cricket", "Cricket", "Mumbai", creator.ID)

	req := formRequest("/events/"+ev.ID.Hex()+"/join", url.Values{}, testutil.UserFor(joiner.ID, joiner.Name, joiner.Email, "user"))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	rec := testutil.NewRecorder()

	env.handler.HandleJoin(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/events/"+ev.ID.Hex())

	rec2, err := membershipstore.New(env.db).Get(ctx, ev.ID, joiner.ID)
	if err != nil {
		t.Fatalf("membership Get: %v", err)
	}
	if rec2.Status != models.MembershipPending {
		t.Errorf("status: got %q, want pending", rec2.Status)
	}

	got, err := eventstore.New(env.db).GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("event GetByID: %v", err)
	}
	if !got.HasAttendee(joiner.ID) {
		t.Error("joiner missing from attendees set")
	}
	if got.HasAccepted(joiner.ID) {
		t.Error("joiner should not be accepted yet")
	}
}

func TestHandleJoin_CreatorGetsOwnEventError(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, env.db)
	creator := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")
	ev := fx.CreateEvent(ctx, "Box Cricket", "Cricket", "Mumbai", creator.ID)

	req := formRequest("/events/"+ev.ID.Hex()+"/join", url.Values{}, testutil.UserFor(creator.ID, creator.Name, creator.Email, "user"))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	rec := testutil.NewRecorder()

	env.handler.HandleJoin(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/events/"+ev.ID.Hex()+"?err=own")
}

func TestHandleJoin_SecondRequestRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, env.db)
	creator := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")
	joiner := fx.CreateUser(ctx, "Ben", "ben@example.com", "user")
	ev := fx.CreateEvent(ctx, "Box Cricket", "Cricket", "Mumbai", creator.ID)
	fx.CreateMembership(ctx, ev.ID, joiner, models.MembershipAccepted)

	req := formRequest("/events/"+ev.ID.Hex()+"/join", url.Values{}, testutil.UserFor(joiner.ID, joiner.Name, joiner.Email, "user"))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	rec := testutil.NewRecorder()

	env.handler.HandleJoin(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/events/"+ev.ID.Hex()+"?err=already")

	// The accepted record must survive the replayed join.
	got, err := membershipstore.New(env.db).Get(ctx, ev.ID, joiner.ID)
	if err != nil {
		t.Fatalf("membership Get: %v", err)
	}
	if got.Status != models.MembershipAccepted {
		t.Errorf("status after replay: got %q, want accepted", got.Status)
	}
}

func TestHandleLeave_RemovesMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, env.db)
	creator := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")
	member := fx.CreateUser(ctx, "Ben", "ben@example.com", "user")
	ev := fx.CreateEvent(ctx, "Box Cricket", "Cricket", "Mumbai", creator.ID)
	fx.CreateMembership(ctx, ev.ID, member, models.MembershipPending)

	req := formRequest("/events/"+ev.ID.Hex()+"/leave", url.Values{}, testutil.UserFor(member.ID, member.Name, member.Email, "user"))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	rec := testutil.NewRecorder()

	env.handler.HandleLeave(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/events/"+ev.ID.Hex())

	if _, err := membershipstore.New(env.db).Get(ctx, ev.ID, member.ID); err == nil {
		t.Error("membership record still present after leave")
	}
}

func TestHandleDelete_StrangerForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, env.db)
	creator := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")
	stranger := fx.CreateUser(ctx, "Ben", "ben@example.com", "user")
	ev := fx.CreateEvent(ctx, "Box Cricket", "Cricket", "Mumbai", creator.ID)

	req := formRequest("/events/"+ev.ID.Hex()+"/delete", url.Values{}, testutil.UserFor(stranger.ID, stranger.Name, stranger.Email, "user"))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	rec := testutil.NewRecorder()

	env.handler.HandleDelete(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/forbidden")

	if _, err := eventstore.New(env.db).GetByID(ctx, ev.ID); err != nil {
		t.Errorf("event should still exist: %v", err)
	}
}

func TestHandleDelete_AdminAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, env.db)
	creator := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")
	admin := fx.CreateAdmin(ctx, "Root", "root@example.com")
	ev := fx.CreateEvent(ctx, "Box Cricket", "Cricket", "Mumbai", creator.ID)

	req := formRequest("/events/"+ev.ID.Hex()+"/delete", url.Values{}, testutil.UserFor(admin.ID, admin.Name, admin.Email, "admin"))
	req = testutil.WithChiURLParam(req, "id", ev.ID.Hex())
	rec := testutil.NewRecorder()

	env.handler.HandleDelete(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/events")

	if _, err := eventstore.New(env.db).GetByID(ctx, ev.ID); err == nil {
		t.Error("event should be gone after admin delete")
	}
}
