// internal/app/features/events/form.go
package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/sportsbuddy/sportsbuddy/internal/app/policy/eventpolicy"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	eventstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/events"
	refdatastore "github.com/sportsbuddy/sportsbuddy/internal/app/store/refdata"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/formutil"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/notify"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
)

// dateTimeLocal is the value format of <input type="datetime-local">.
const dateTimeLocal = "2006-01-02T15:04"

type formData struct {
	formutil.Base
	Editing bool
	EventID string

	EvTitle     string
	Sport       string
	City        string
	Area        string
	Skill       string
	Description string
	DateTime    string // datetime-local string

	SportOptions []models.Sport
	CityOptions  []models.City
	AreaOptions  []models.Area
}

// ServeNew handles GET /events/new.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data := formData{}
	formutil.SetBase(&data.Base, r, "New event", "/events")
	h.loadFormOptions(ctx, &data)
	templates.Render(w, r, "event_form", data)
}

// HandleCreate handles POST /events/new.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data, ev, errMsg := h.readForm(r)
	if errMsg == "" && !ev.DateTime.After(time.Now()) {
		errMsg = "Please pick a date and time in the future."
	}
	if errMsg != "" {
		formutil.SetBase(&data.Base, r, "New event", "/events")
		data.SetError(errMsg)
		h.loadFormOptions(ctx, &data)
		templates.Render(w, r, "event_form", data)
		return
	}

	ev.CreatedBy = userID
	eventID, err := eventstore.New(h.DB).Create(ctx, ev)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "event create failed", err, "Unable to create the event.", "/events")
		return
	}

	h.Log.Info("event created",
		zap.String("event_id", eventID.Hex()),
		zap.String("created_by", userID.Hex()),
		zap.String("sport", ev.Sport))

	h.Audit.Record(ctx, &userID, audit.ActionCreateEvent, "events", eventID.Hex(), map[string]string{
		"title": ev.Title,
		"sport": ev.Sport,
		"city":  ev.City,
	})

	h.broadcastNewEvent(ctx, eventID, ev.Title, name, userID)

	http.Redirect(w, r, "/events/"+eventID.Hex(), http.StatusSeeOther)
}

// ServeEdit handles GET /events/{id}/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, ok := h.loadOwnedEvent(ctx, w, r)
	if !ok {
		return
	}

	data := formData{
		Editing:     true,
		EventID:     ev.ID.Hex(),
		EvTitle:     ev.Title,
		Sport:       ev.Sport,
		City:        ev.City,
		Area:        ev.Area,
		Skill:       ev.Skill,
		Description: ev.Description,
		DateTime:    ev.DateTime.Local().Format(dateTimeLocal),
	}
	formutil.SetBase(&data.Base, r, "Edit event", "/events/"+ev.ID.Hex())
	h.loadFormOptions(ctx, &data)
	templates.Render(w, r, "event_form", data)
}

// HandleEdit handles POST /events/{id}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, ok := h.loadOwnedEvent(ctx, w, r)
	if !ok {
		return
	}
	_, _, actorID, _ := authz.UserCtx(r)

	data, updated, errMsg := h.readForm(r)
	if errMsg != "" {
		data.Editing = true
		data.EventID = ev.ID.Hex()
		formutil.SetBase(&data.Base, r, "Edit event", "/events/"+ev.ID.Hex())
		data.SetError(errMsg)
		h.loadFormOptions(ctx, &data)
		templates.Render(w, r, "event_form", data)
		return
	}

	if err := eventstore.New(h.DB).Update(ctx, ev.ID, updated); err != nil {
		h.ErrLog.LogServerError(w, r, "event update failed", err, "Unable to save the event.", "/events/"+ev.ID.Hex())
		return
	}

	h.Audit.Record(ctx, &actorID, audit.ActionUpdateEvent, "events", ev.ID.Hex(), map[string]string{
		"title": updated.Title,
	})

	http.Redirect(w, r, "/events/"+ev.ID.Hex(), http.StatusSeeOther)
}

// readForm parses and validates the shared create/edit form, returning the
// re-render data, the parsed event, and an error message ("" when valid).
// The description is sanitized to plain text before storage.
func (h *Handler) readForm(r *http.Request) (formData, models.Event, string) {
	if err := r.ParseForm(); err != nil {
		return formData{}, models.Event{}, "Invalid form data."
	}

	data := formData{
		EvTitle:     strings.TrimSpace(r.FormValue("title")),
		Sport:       strings.TrimSpace(r.FormValue("sport")),
		City:        strings.TrimSpace(r.FormValue("city")),
		Area:        strings.TrimSpace(r.FormValue("area")),
		Skill:       strings.TrimSpace(r.FormValue("skill")),
		Description: strings.TrimSpace(r.FormValue("description")),
		DateTime:    strings.TrimSpace(r.FormValue("date_time")),
	}

	switch {
	case data.EvTitle == "":
		return data, models.Event{}, "Please enter a title."
	case data.Sport == "":
		return data, models.Event{}, "Please choose a sport."
	case data.City == "":
		return data, models.Event{}, "Please choose a city."
	case data.DateTime == "":
		return data, models.Event{}, "Please pick a date and time."
	}

	when, err := time.ParseInLocation(dateTimeLocal, data.DateTime, time.Local)
	if err != nil {
		return data, models.Event{}, "That date and time is not valid."
	}

	ev := models.Event{
		Title:       data.EvTitle,
		Sport:       data.Sport,
		City:        data.City,
		Area:        data.Area,
		Skill:       data.Skill,
		Description: h.sanitizer.Sanitize(data.Description),
		DateTime:    when,
	}
	return data, ev, ""
}

// loadOwnedEvent loads the event from the URL and verifies the viewer is its
// creator or an admin, writing the error response itself on failure.
func (h *Handler) loadOwnedEvent(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Event, bool) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "event: bad id", err, "That event does not exist.", "/events")
		return nil, false
	}

	ev, err := eventstore.New(h.DB).GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "event: not found", err, "That event does not exist.", "/events")
		} else {
			h.ErrLog.LogServerError(w, r, "event: load failed", err, "Unable to load that event.", "/events")
		}
		return nil, false
	}

	if !eventpolicy.CanManage(r, ev) {
		http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
		return nil, false
	}
	return ev, true
}

func (h *Handler) loadFormOptions(ctx context.Context, data *formData) {
	store := refdatastore.New(h.DB)
	if sports, err := store.ListSports(ctx); err == nil {
		data.SportOptions = sports
	}
	if cities, err := store.ListCities(ctx); err == nil {
		data.CityOptions = cities
	}
	if data.City != "" {
		if areas, err := store.ListAreasByCity(ctx, data.City); err == nil {
			data.AreaOptions = areas
		}
	}
}

// broadcastNewEvent fans a new-event notification out to every other active
// user. Failures only log; the event is already created.
func (h *Handler) broadcastNewEvent(ctx context.Context, eventID primitive.ObjectID, title, creatorName string, creatorID primitive.ObjectID) {
	if h.Notifier == nil {
		return
	}
	ids, err := userstore.New(h.DB).ListIDsExcept(ctx, creatorID)
	if err != nil {
		h.Log.Warn("new event broadcast: listing recipients failed", zap.Error(err))
		return
	}
	if creatorName == "" {
		creatorName = "A SportsBuddy user"
	}
	h.Notifier.SendAll(ctx, ids, notify.Message{
		Type:    models.NotifyNewEvent,
		Title:   "New Event Posted",
		Message: fmt.Sprintf("%s has posted a new event: %q. Check it out!", creatorName, title),
		Data: map[string]string{
			"eventId":     eventID.Hex(),
			"eventTitle":  title,
			"creatorId":   creatorID.Hex(),
			"creatorName": creatorName,
		},
	})
}
