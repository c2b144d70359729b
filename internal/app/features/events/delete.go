// internal/app/features/events/delete.go
package events

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	eventstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/events"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
)

// HandleDelete handles POST /events/{id}/delete. The store cascades the
// event's membership records.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, ok := h.loadOwnedEvent(ctx, w, r)
	if !ok {
		return
	}
	_, _, actorID, _ := authz.UserCtx(r)

	if err := eventstore.New(h.DB).Delete(ctx, ev.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "event delete failed", err, "Unable to delete the event.", "/events/"+ev.ID.Hex())
		return
	}

	h.Log.Info("event deleted",
		zap.String("event_id", ev.ID.Hex()),
		zap.String("actor_id", actorID.Hex()))

	h.Audit.Record(ctx, &actorID, audit.ActionDeleteEvent, "events", ev.ID.Hex(), map[string]string{
		"title": ev.Title,
	})

	http.Redirect(w, r, "/events", http.StatusSeeOther)
}
