// internal/app/features/events/list.go
package events

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"

	eventstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/events"
	refdatastore "github.com/sportsbuddy/sportsbuddy/internal/app/store/refdata"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
)

type listRow struct {
	ID       string
	Title    string
	Sport    string
	City     string
	Area     string
	Skill    string
	DateTime time.Time
	IsMine   bool
	IsPast   bool
}

type listData struct {
	viewdata.BaseVM
	Events []listRow

	FilterSport string
	FilterCity  string
	MineOnly    bool

	SportOptions []models.Sport
	CityOptions  []models.City
}

// ServeList handles GET /events with optional sport, city, and mine filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := eventstore.ListFilter{
		Sport: query.Get(r, "sport"),
		City:  query.Get(r, "city"),
	}

	_, _, userID, signedIn := authz.UserCtx(r)
	mineOnly := query.Get(r, "mine") == "1" && signedIn
	if mineOnly {
		filter.CreatedBy = userID
	}

	events, err := eventstore.New(h.DB).List(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "events list: query failed", err, "Unable to load events right now.", "/")
		return
	}

	now := time.Now()
	rows := make([]listRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, listRow{
			ID:       ev.ID.Hex(),
			Title:    ev.Title,
			Sport:    ev.Sport,
			City:     ev.City,
			Area:     ev.Area,
			Skill:    ev.Skill,
			DateTime: ev.DateTime,
			IsMine:   signedIn && ev.CreatedBy == userID,
			IsPast:   ev.DateTime.Before(now),
		})
	}

	data := listData{
		Events:      rows,
		FilterSport: filter.Sport,
		FilterCity:  filter.City,
		MineOnly:    mineOnly,
	}
	data.BaseVM = viewdata.NewBaseVM(r, h.DB, "Events", "/")

	store := refdatastore.New(h.DB)
	if sports, err := store.ListSports(ctx); err == nil {
		data.SportOptions = sports
	}
	if cities, err := store.ListCities(ctx); err == nil {
		data.CityOptions = cities
	}

	templates.Render(w, r, "events_list", data)
}
