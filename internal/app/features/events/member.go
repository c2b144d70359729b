// internal/app/features/events/member.go
package events

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
)

// HandleJoin handles POST /events/{id}/join: files a pending request and
// notifies the creator. Errors become flash codes on the detail redirect.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "event join: bad id", err, "That event does not exist.", "/events")
		return
	}
	actor, ok := authz.ActorProfile(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = h.Controller.Join(ctx, eventID, actor, "")
	switch {
	case err == nil:
		http.Redirect(w, r, "/events/"+eventID.Hex(), http.StatusSeeOther)
	case errors.Is(err, storeerr.ErrAlreadyRequested):
		http.Redirect(w, r, "/events/"+eventID.Hex()+"?err=already", http.StatusSeeOther)
	case errors.Is(err, storeerr.ErrPermissionDenied):
		http.Redirect(w, r, "/events/"+eventID.Hex()+"?err=own", http.StatusSeeOther)
	case errors.Is(err, storeerr.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "event join: not found", err, "That event does not exist.", "/events")
	default:
		h.Log.Error("event join failed", zap.String("event_id", eventID.Hex()), zap.Error(err))
		http.Redirect(w, r, "/events/"+eventID.Hex()+"?err=failed", http.StatusSeeOther)
	}
}

// HandleLeave handles POST /events/{id}/leave for pending and accepted
// members alike.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "event leave: bad id", err, "That event does not exist.", "/events")
		return
	}
	actor, ok := authz.ActorProfile(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = h.Controller.Leave(ctx, eventID, actor, "")
	switch {
	case err == nil:
		http.Redirect(w, r, "/events/"+eventID.Hex(), http.StatusSeeOther)
	case errors.Is(err, storeerr.ErrNotFound):
		http.Redirect(w, r, "/events/"+eventID.Hex()+"?err=norecord", http.StatusSeeOther)
	default:
		h.Log.Error("event leave failed", zap.String("event_id", eventID.Hex()), zap.Error(err))
		http.Redirect(w, r, "/events/"+eventID.Hex()+"?err=failed", http.StatusSeeOther)
	}
}
