// internal/app/features/refdata/handler.go
package refdata

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	errorsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	refdatastore "github.com/sportsbuddy/sportsbuddy/internal/app/store/refdata"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auditlog"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
)

// Handler serves the admin reference-data console: the sport, city, and area
// lists that feed the profile and event dropdowns.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *errorsfeature.ErrorLogger
	Audit  *auditlog.Logger
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog, Audit: auditLog}
}

type pageData struct {
	viewdata.BaseVM
	Sports []models.Sport
	Cities []models.City
	Areas  []models.Area
	Flash  string
}

// ServeIndex handles GET /admin/refdata.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := refdatastore.New(h.DB)
	data := pageData{}
	data.BaseVM = viewdata.NewBaseVM(r, h.DB, "Reference data", "/events")

	var err error
	if data.Sports, err = store.ListSports(ctx); err != nil {
		h.ErrLog.LogServerError(w, r, "refdata: listing sports failed", err, "Unable to load reference data.", "/events")
		return
	}
	if data.Cities, err = store.ListCities(ctx); err != nil {
		h.ErrLog.LogServerError(w, r, "refdata: listing cities failed", err, "Unable to load reference data.", "/events")
		return
	}
	if data.Areas, err = store.ListAreas(ctx); err != nil {
		h.ErrLog.LogServerError(w, r, "refdata: listing areas failed", err, "Unable to load reference data.", "/events")
		return
	}

	if r.URL.Query().Get("err") == "duplicate" {
		data.Flash = "An entry with that name already exists."
	}

	templates.Render(w, r, "refdata_index", data)
}

// kind groups the per-collection store calls so create, update, and delete
// share one handler body each.
type kind struct {
	label  string
	create func(ctx context.Context, s *refdatastore.Store, name, city string) (primitive.ObjectID, error)
	update func(ctx context.Context, s *refdatastore.Store, id primitive.ObjectID, name, city string) error
	remove func(s *refdatastore.Store, ctx context.Context, id primitive.ObjectID) error
}

var kinds = map[string]kind{
	"sports": {
		label: "sport",
		create: func(ctx context.Context, s *refdatastore.Store, name, _ string) (primitive.ObjectID, error) {
			return s.CreateSport(ctx, name)
		},
		update: func(ctx context.Context, s *refdatastore.Store, id primitive.ObjectID, name, _ string) error {
			return s.UpdateSport(ctx, id, name)
		},
		remove: (*refdatastore.Store).DeleteSport,
	},
	"cities": {
		label: "city",
		create: func(ctx context.Context, s *refdatastore.Store, name, _ string) (primitive.ObjectID, error) {
			return s.CreateCity(ctx, name)
		},
		update: func(ctx context.Context, s *refdatastore.Store, id primitive.ObjectID, name, _ string) error {
			return s.UpdateCity(ctx, id, name)
		},
		remove: (*refdatastore.Store).DeleteCity,
	},
	"areas": {
		label: "area",
		create: func(ctx context.Context, s *refdatastore.Store, name, city string) (primitive.ObjectID, error) {
			return s.CreateArea(ctx, name, city)
		},
		update: func(ctx context.Context, s *refdatastore.Store, id primitive.ObjectID, name, city string) error {
			return s.UpdateArea(ctx, id, name, city)
		},
		remove: (*refdatastore.Store).DeleteArea,
	},
}

// HandleCreate handles POST /admin/refdata/{kind}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	k, ok := kinds[chi.URLParam(r, "kind")]
	if !ok {
		h.ErrLog.LogNotFound(w, r, "refdata: unknown kind", nil, "No such reference data.", "/admin/refdata")
		return
	}
	name, city, ok := h.readNameCity(w, r, k)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := k.create(ctx, refdatastore.New(h.DB), name, city)
	if err != nil {
		h.storeFailure(w, r, k, "create", err)
		return
	}

	h.record(r, audit.ActionCreateRefData, k.label, id.Hex(), name, city)
	http.Redirect(w, r, "/admin/refdata", http.StatusSeeOther)
}

// HandleUpdate handles POST /admin/refdata/{kind}/{id}/update.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	k, id, ok := h.kindAndID(w, r)
	if !ok {
		return
	}
	name, city, ok := h.readNameCity(w, r, k)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := k.update(ctx, refdatastore.New(h.DB), id, name, city); err != nil {
		h.storeFailure(w, r, k, "update", err)
		return
	}

	h.record(r, audit.ActionUpdateRefData, k.label, id.Hex(), name, city)
	http.Redirect(w, r, "/admin/refdata", http.StatusSeeOther)
}

// HandleDelete handles POST /admin/refdata/{kind}/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	k, id, ok := h.kindAndID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := k.remove(refdatastore.New(h.DB), ctx, id); err != nil {
		h.storeFailure(w, r, k, "delete", err)
		return
	}

	h.record(r, audit.ActionDeleteRefData, k.label, id.Hex(), "", "")
	http.Redirect(w, r, "/admin/refdata", http.StatusSeeOther)
}

func (h *Handler) kindAndID(w http.ResponseWriter, r *http.Request) (kind, primitive.ObjectID, bool) {
	k, ok := kinds[chi.URLParam(r, "kind")]
	if !ok {
		h.ErrLog.LogNotFound(w, r, "refdata: unknown kind", nil, "No such reference data.", "/admin/refdata")
		return kind{}, primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "refdata: bad id", err, "No such entry.", "/admin/refdata")
		return kind{}, primitive.NilObjectID, false
	}
	return k, id, true
}

func (h *Handler) readNameCity(w http.ResponseWriter, r *http.Request, k kind) (string, string, bool) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "refdata: parse form failed", err, "Invalid form data.", "/admin/refdata")
		return "", "", false
	}
	name := strings.TrimSpace(r.FormValue("name"))
	city := strings.TrimSpace(r.FormValue("city"))
	if name == "" || (k.label == "area" && city == "") {
		h.ErrLog.LogBadRequest(w, r, "refdata: missing fields", nil, "Please fill in all fields.", "/admin/refdata")
		return "", "", false
	}
	return name, city, true
}

func (h *Handler) storeFailure(w http.ResponseWriter, r *http.Request, k kind, op string, err error) {
	if errors.Is(err, refdatastore.ErrDuplicateName) {
		http.Redirect(w, r, "/admin/refdata?err=duplicate", http.StatusSeeOther)
		return
	}
	if errors.Is(err, storeerr.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "refdata: entry not found", err, "No such entry.", "/admin/refdata")
		return
	}
	h.ErrLog.LogServerError(w, r, "refdata: "+op+" "+k.label+" failed", err, "Unable to save reference data.", "/admin/refdata")
}

func (h *Handler) record(r *http.Request, action, label, id, name, city string) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		return
	}
	details := map[string]string{"kind": label}
	if name != "" {
		details["name"] = name
	}
	if city != "" {
		details["city"] = city
	}
	h.Audit.Record(r.Context(), &actorID, action, label+"s", id, details)
}
