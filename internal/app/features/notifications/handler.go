// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	errorsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	notificationstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/notifications"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
)

// Handler serves a user's notification inbox.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *errorsfeature.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog}
}

type row struct {
	ID        string
	Type      string
	Title     string
	Message   string
	EventID   string
	Read      bool
	CreatedAt time.Time
}

type listData struct {
	viewdata.BaseVM
	Notifications []row
	UnreadOnly    bool
}

// ServeList handles GET /notifications, newest first. ?unread=1 filters to
// unread messages.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	unreadOnly := query.Get(r, "unread") == "1"
	list, err := notificationstore.New(h.DB).ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "notifications: list failed", err, "Unable to load notifications.", "/")
		return
	}

	data := listData{UnreadOnly: unreadOnly}
	data.BaseVM = viewdata.NewBaseVM(r, h.DB, "Notifications", "/")
	for _, n := range list {
		data.Notifications = append(data.Notifications, row{
			ID:        n.ID.Hex(),
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			EventID:   n.Data["eventId"],
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	templates.Render(w, r, "notifications_list", data)
}

// HandleMarkRead handles POST /notifications/{id}/read. Only the owner's
// records are touched; an already-read record is a no-op success.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, notificationstore.New(h.DB).MarkRead)
}

// HandleDelete handles POST /notifications/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, notificationstore.New(h.DB).Delete)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id, userID primitive.ObjectID) error) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "notifications: bad id", err, "That notification does not exist.", "/notifications")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := op(ctx, id, userID); err != nil && !errors.Is(err, storeerr.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "notifications: update failed", err, "Unable to update that notification.", "/notifications")
		return
	}
	// A missing record means it was already removed or belongs to someone
	// else; either way the inbox redirect is the right answer.
	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}
