package eventpolicy_test

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sportsbuddy/sportsbuddy/internal/app/policy/eventpolicy"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/sportsbuddy/sportsbuddy/internal/testutil"
)

func TestCanManage(t *testing.T) {
	creatorID := primitive.NewObjectID()
	ev := &models.Event{ID: primitive.NewObjectID(), CreatedBy: creatorID}

	creator := testutil.UserFor(creatorID, "Asha", "asha@example.com", "user")
	stranger := testutil.RegularUser()
	admin := testutil.AdminUser()

	tests := []struct {
		name string
		req  *http.Request
		want bool
	}{
		{"visitor", testutil.NewRequest(http.MethodGet, "/events/x"), false},
		{"creator", testutil.NewAuthenticatedRequest(http.MethodGet, "/events/x", creator), true},
		{"stranger", testutil.NewAuthenticatedRequest(http.MethodGet, "/events/x", stranger), false},
		{"admin", testutil.NewAuthenticatedRequest(http.MethodGet, "/events/x", admin), true},
	}

	for _, tc := range tests {
		if got := eventpolicy.CanManage(tc.req, ev); got != tc.want {
			t.Errorf("%s: CanManage = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanJoin(t *testing.T) {
	creatorID := primitive.NewObjectID()
	ev := &models.Event{ID: primitive.NewObjectID(), CreatedBy: creatorID}

	creator := testutil.UserFor(creatorID, "Asha", "asha@example.com", "user")
	other := testutil.RegularUser()

	if eventpolicy.CanJoin(testutil.NewRequest(http.MethodGet, "/events/x"), ev) {
		t.Error("visitor should not be able to join")
	}
	if eventpolicy.CanJoin(testutil.NewAuthenticatedRequest(http.MethodGet, "/events/x", creator), ev) {
		t.Error("creator should not be able to join own event")
	}
	if !eventpolicy.CanJoin(testutil.NewAuthenticatedRequest(http.MethodGet, "/events/x", other), ev) {
		t.Error("other signed-in users should be able to join")
	}
}
