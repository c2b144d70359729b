// internal/app/features/requests/handler.go
package requests

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	errorsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	"github.com/sportsbuddy/sportsbuddy/internal/app/matching"
	"github.com/sportsbuddy/sportsbuddy/internal/app/membership"
	"github.com/sportsbuddy/sportsbuddy/internal/app/policy/eventpolicy"
	eventstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/events"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
)

// Handler serves the creator's join-request triage page and the accept and
// reject actions.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *errorsfeature.ErrorLogger
	Controller *membership.Controller
}

func NewHandler(db *mongo.Database, controller *membership.Controller, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog, Controller: controller}
}

// candidateRow is one pending request decorated with its match signals.
type candidateRow struct {
	EventID      string
	UserID       string
	Name         string
	Email        string
	RequestedAt  time.Time
	SportMatch   bool
	CityMatch    bool
	MutualSports []string
}

func (c candidateRow) Star() bool { return c.SportMatch && c.CityMatch }

type acceptedRow struct {
	UserID     string
	Name       string
	AcceptedAt *time.Time
}

type pageData struct {
	viewdata.BaseVM
	EventID    string
	EventTitle string
	EventSport string
	EventCity  string

	Star       []candidateRow
	SportOnly  []candidateRow
	CityOnly   []candidateRow
	NotMatched []candidateRow
	Accepted   []acceptedRow

	PendingTotal int
}

// ServeRequests handles GET /events/{id}/requests. Only the event creator or
// an admin may see the triage page.
func (h *Handler) ServeRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ev, ok := h.loadManagedEvent(ctx, w, r)
	if !ok {
		return
	}

	pending, err := h.Controller.ListRequests(ctx, ev.ID, models.MembershipPending)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "requests: listing pending failed", err, "Unable to load requests.", "/events/"+ev.ID.Hex())
		return
	}
	accepted, err := h.Controller.ListRequests(ctx, ev.ID, models.MembershipAccepted)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "requests: listing accepted failed", err, "Unable to load requests.", "/events/"+ev.ID.Hex())
		return
	}

	data := pageData{
		EventID:      ev.ID.Hex(),
		EventTitle:   ev.Title,
		EventSport:   ev.Sport,
		EventCity:    ev.City,
		PendingTotal: len(pending),
	}
	data.BaseVM = viewdata.NewBaseVM(r, h.DB, "Requests for "+ev.Title, "/events/"+ev.ID.Hex())

	h.classify(ctx, ev, pending, &data)

	for _, rec := range accepted {
		data.Accepted = append(data.Accepted, acceptedRow{
			UserID:     rec.UserID.Hex(),
			Name:       rec.DisplayName,
			AcceptedAt: rec.AcceptedAt,
		})
	}

	templates.Render(w, r, "event_requests", data)
}

// classify buckets pending candidates by their profile's fit to the event.
// Profiles that fail to load fall into the not-matched bucket; the triage is
// informational and must not block the page.
func (h *Handler) classify(ctx context.Context, ev *models.Event, pending []models.EventMembership, data *pageData) {
	ids := make([]primitive.ObjectID, 0, len(pending))
	for _, rec := range pending {
		ids = append(ids, rec.UserID)
	}

	users, err := userstore.New(h.DB).ListByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("requests: loading candidate profiles failed", zap.Error(err))
		users = map[primitive.ObjectID]models.User{}
	}

	var creatorSports []string
	if creator, err := userstore.New(h.DB).GetByID(ctx, ev.CreatedBy); err == nil {
		creatorSports = creator.Sports
	}

	candidates := make([]matching.Candidate, len(pending))
	for i, rec := range pending {
		if u, found := users[rec.UserID]; found {
			candidates[i] = matching.Candidate{Sports: u.Sports, City: u.City}
		}
	}

	buckets := matching.Categorize(ev.Sport, ev.City, candidates)

	row := func(i int) candidateRow {
		rec := pending[i]
		c := candidates[i]
		return candidateRow{
			EventID:      ev.ID.Hex(),
			UserID:       rec.UserID.Hex(),
			Name:         rec.DisplayName,
			Email:        rec.Email,
			RequestedAt:  rec.RequestedAt,
			SportMatch:   matching.HasSportInterest(ev.Sport, c.Sports),
			CityMatch:    matching.CityMatch(ev.City, c.City),
			MutualSports: matching.MutualSportInterests(creatorSports, c.Sports),
		}
	}

	for _, i := range buckets.Star {
		data.Star = append(data.Star, row(i))
	}
	for _, i := range buckets.Sport {
		if !candidateIn(buckets.Star, i) {
			data.SportOnly = append(data.SportOnly, row(i))
		}
	}
	for _, i := range buckets.City {
		if !candidateIn(buckets.Star, i) {
			data.CityOnly = append(data.CityOnly, row(i))
		}
	}
	for _, i := range buckets.NotMatched {
		data.NotMatched = append(data.NotMatched, row(i))
	}
}

func candidateIn(bucket []int, i int) bool {
	for _, b := range bucket {
		if b == i {
			return true
		}
	}
	return false
}

// HandleAccept handles POST /events/{id}/requests/{userId}/accept.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Controller.Accept)
}

// HandleReject handles POST /events/{id}/requests/{userId}/reject. Works on
// pending and accepted records; on an accepted one it removes the attendee.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Controller.Reject)
}

type decision func(ctx context.Context, eventID, attendeeID primitive.ObjectID, actor membership.Profile, eventTitle string) error

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, apply decision) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "requests: bad event id", err, "That event does not exist.", "/events")
		return
	}
	attendeeID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "requests: bad user id", err, "That request does not exist.", "/events/"+eventID.Hex()+"/requests")
		return
	}
	actor, ok := authz.ActorProfile(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = apply(ctx, eventID, attendeeID, actor, "")
	switch {
	case err == nil:
		http.Redirect(w, r, "/events/"+eventID.Hex()+"/requests", http.StatusSeeOther)
	case errors.Is(err, storeerr.ErrPermissionDenied):
		http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
	case errors.Is(err, storeerr.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "requests: record not found", err, "That request no longer exists.", "/events/"+eventID.Hex()+"/requests")
	default:
		h.ErrLog.LogServerError(w, r, "requests: decision failed", err, "Unable to update that request.", "/events/"+eventID.Hex()+"/requests")
	}
}

// loadManagedEvent loads the event and verifies the viewer may manage it.
func (h *Handler) loadManagedEvent(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Event, bool) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "requests: bad event id", err, "That event does not exist.", "/events")
		return nil, false
	}

	ev, err := eventstore.New(h.DB).GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "requests: event not found", err, "That event does not exist.", "/events")
		} else {
			h.ErrLog.LogServerError(w, r, "requests: event load failed", err, "Unable to load that event.", "/events")
		}
		return nil, false
	}

	if !eventpolicy.CanManage(r, ev) {
		http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
		return nil, false
	}
	return ev, true
}
