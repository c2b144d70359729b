// internal/app/features/events/detail.go
package events

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sportsbuddy/sportsbuddy/internal/app/policy/eventpolicy"
	eventstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/events"
	membershipstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/memberships"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
)

type attendeeRow struct {
	Name   string
	Status string
}

type detailData struct {
	viewdata.BaseVM
	ID          string
	Title       string
	Sport       string
	City        string
	Area        string
	Skill       string
	Description string
	DateTime    time.Time
	CreatorName string
	IsPast      bool

	// Viewer relationship to the event.
	IsCreator   bool
	CanManage   bool // creator or admin
	IsPending   bool
	IsAccepted  bool
	CanJoin     bool
	CanLeave    bool
	PendingSeen int64

	Attendees []attendeeRow
	FlashErr  string
}

// ServeDetail handles GET /events/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "event detail: bad id", err, "That event does not exist.", "/events")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, err := eventstore.New(h.DB).GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "event detail: not found", err, "That event does not exist.", "/events")
			return
		}
		h.ErrLog.LogServerError(w, r, "event detail: load failed", err, "Unable to load that event.", "/events")
		return
	}

	data := h.buildDetail(ctx, r, ev)
	data.FlashErr = flashMessage(r)
	templates.Render(w, r, "event_detail", data)
}

func (h *Handler) buildDetail(ctx context.Context, r *http.Request, ev *models.Event) detailData {
	_, _, userID, signedIn := authz.UserCtx(r)

	data := detailData{
		ID:          ev.ID.Hex(),
		Title:       ev.Title,
		Sport:       ev.Sport,
		City:        ev.City,
		Area:        ev.Area,
		Skill:       ev.Skill,
		Description: ev.Description,
		DateTime:    ev.DateTime,
		IsPast:      ev.DateTime.Before(time.Now()),
	}
	data.BaseVM = viewdata.NewBaseVM(r, h.DB, ev.Title, "/events")

	if signedIn {
		data.IsCreator = ev.CreatedBy == userID
		data.CanManage = eventpolicy.CanManage(r, ev)
		data.IsPending = ev.HasAttendee(userID) && !ev.HasAccepted(userID)
		data.IsAccepted = ev.HasAccepted(userID)
		data.CanJoin = !data.IsCreator && !ev.HasAttendee(userID) && !data.IsPast
		data.CanLeave = !data.IsCreator && ev.HasAttendee(userID)
	}

	// Creator name and pending count are best-effort decoration.
	if creator, err := userstore.New(h.DB).GetByID(ctx, ev.CreatedBy); err == nil {
		data.CreatorName = creator.Name
	}
	if data.CanManage {
		if n, err := membershipstore.New(h.DB).CountPending(ctx, ev.ID); err == nil {
			data.PendingSeen = n
		}
	}

	// Accepted attendees are public to signed-in viewers; names come from the
	// membership snapshots so one query covers it.
	if signedIn {
		if recs, err := membershipstore.New(h.DB).List(ctx, ev.ID, models.MembershipAccepted); err == nil {
			for _, rec := range recs {
				data.Attendees = append(data.Attendees, attendeeRow{Name: rec.DisplayName, Status: rec.Status})
			}
		}
	}
	return data
}

// flashMessage maps the err query param set by failed join/leave redirects to
// user-facing text. Unknown codes render nothing.
func flashMessage(r *http.Request) string {
	switch r.URL.Query().Get("err") {
	case "already":
		return "You have already requested to join this event."
	case "own":
		return "You cannot join your own event."
	case "norecord":
		return "You are not part of this event."
	case "failed":
		return "Something went wrong. Please try again."
	}
	return ""
}
