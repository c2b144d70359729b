// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	errorsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
)

const pageSize = 50

// Handler serves the admin audit-trail viewer.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *errorsfeature.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog}
}

type row struct {
	Timestamp        time.Time
	ActorID          string
	Action           string
	TargetCollection string
	TargetID         string
	Details          map[string]string
}

type listData struct {
	viewdata.BaseVM
	Entries []row

	FilterAction     string
	FilterCollection string
	FilterActor      string

	Page     int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
	Total    int64
}

// ServeList handles GET /admin/audit with action, collection, actor, and
// page query parameters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := audit.QueryFilter{
		Action:           query.Get(r, "action"),
		TargetCollection: query.Get(r, "collection"),
	}

	actorHex := query.Get(r, "actor")
	if actorHex != "" {
		if actorID, err := primitive.ObjectIDFromHex(actorHex); err == nil {
			filter.ActorID = &actorID
		}
	}

	page, _ := strconv.Atoi(query.Get(r, "page"))
	if page < 1 {
		page = 1
	}
	filter.Limit = pageSize
	filter.Offset = int64(page-1) * pageSize

	store := audit.New(h.DB)
	entries, err := store.List(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit viewer: list failed", err, "Unable to load the audit trail.", "/events")
		return
	}
	total, err := store.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit viewer: count failed", err, "Unable to load the audit trail.", "/events")
		return
	}

	data := listData{
		FilterAction:     filter.Action,
		FilterCollection: filter.TargetCollection,
		FilterActor:      actorHex,
		Page:             page,
		HasPrev:          page > 1,
		HasNext:          int64(page*pageSize) < total,
		PrevPage:         page - 1,
		NextPage:         page + 1,
		Total:            total,
	}
	data.BaseVM = viewdata.NewBaseVM(r, h.DB, "Audit trail", "/events")

	for _, e := range entries {
		entry := row{
			Timestamp:        e.Timestamp,
			Action:           e.Action,
			TargetCollection: e.TargetCollection,
			TargetID:         e.TargetID,
			Details:          e.Details,
		}
		if e.ActorID != nil {
			entry.ActorID = e.ActorID.Hex()
		} else {
			entry.ActorID = "system"
		}
		data.Entries = append(data.Entries, entry)
	}

	templates.Render(w, r, "audit_list", data)
}
