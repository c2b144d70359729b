// internal/app/policy/eventpolicy.go
package eventpolicy

import (
	"net/http"

	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
)

// CanManage reports whether the current request user may edit, delete, or
// triage requests for the event:
//   - Admins always can
//   - The event's creator can
//
// Visitors and everyone else cannot.
func CanManage(r *http.Request, ev *models.Event) bool {
	role, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	if role == "admin" {
		return true
	}
	return ev.CreatedBy == uid
}

// CanJoin reports whether the current request user may file a join request:
// any signed-in user except the event's creator. A second request on an
// existing record is refused later by the membership state machine, not here.
func CanJoin(r *http.Request, ev *models.Event) bool {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	return ev.CreatedBy != uid
}
