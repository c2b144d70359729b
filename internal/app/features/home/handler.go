package home

import (
	"context"
	"net/http"
	"time"

	eventstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/events"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
	}
}

// eventTeaser is one upcoming-event row on the landing page.
type eventTeaser struct {
	ID       string
	Title    string
	Sport    string
	City     string
	DateTime time.Time
}

// ServeRoot handles GET / (landing page with a handful of upcoming events).
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var teasers []eventTeaser
	events, err := eventstore.New(h.DB).List(ctx, eventstore.ListFilter{})
	if err != nil {
		// The landing page still renders without the teaser list.
		h.Log.Warn("home: loading upcoming events failed", zap.Error(err))
	} else {
		for _, ev := range events {
			teasers = append(teasers, eventTeaser{
				ID:       ev.ID.Hex(),
				Title:    ev.Title,
				Sport:    ev.Sport,
				City:     ev.City,
				DateTime: ev.DateTime,
			})
			if len(teasers) == 6 {
				break
			}
		}
	}

	data := struct {
		viewdata.BaseVM
		Upcoming []eventTeaser
	}{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Welcome", "/"),
		Upcoming: teasers,
	}

	templates.Render(w, r, "home", data)
}
