// internal/app/features/profile/edit.go
package profile

import (
	"context"
	"net/http"
	"strings"

	refdatastore "github.com/sportsbuddy/sportsbuddy/internal/app/store/refdata"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/formutil"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type editData struct {
	formutil.Base
	Name   string
	City   string
	Area   string
	Skill  string
	Sports []string

	SportOptions []models.Sport
	CityOptions  []models.City
	AreaOptions  []models.Area
}

// hasSport reports whether the user's interest list contains the sport.
// Used by the edit template to pre-check boxes.
func (d editData) HasSport(name string) bool {
	for _, s := range d.Sports {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// ServeEdit handles GET /profile/edit.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := userstore.New(h.DB).GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile edit: load user failed", err, "Unable to load your profile.", "/profile")
		return
	}

	data := editData{
		Name:   user.Name,
		City:   user.City,
		Area:   user.Area,
		Skill:  user.Skill,
		Sports: user.Sports,
	}
	formutil.SetBase(&data.Base, r, "Edit profile", "/profile")
	h.loadOptions(ctx, &data)

	templates.Render(w, r, "profile_edit", data)
}

// HandleEdit handles POST /profile/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile edit: parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	city := strings.TrimSpace(r.FormValue("city"))
	area := strings.TrimSpace(r.FormValue("area"))
	skill := strings.TrimSpace(r.FormValue("skill"))
	sports := dedupSports(r.Form["sports"])

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if name == "" {
		data := editData{Name: name, City: city, Area: area, Skill: skill, Sports: sports}
		formutil.SetBase(&data.Base, r, "Edit profile", "/profile")
		data.SetError("Please enter your name.")
		h.loadOptions(ctx, &data)
		templates.Render(w, r, "profile_edit", data)
		return
	}

	if err := userstore.New(h.DB).UpdateProfile(ctx, userID, name, city, area, skill, sports); err != nil {
		h.ErrLog.LogServerError(w, r, "profile edit: update failed", err, "Unable to save your profile.", "/profile")
		return
	}

	h.Log.Info("profile updated", zap.String("user_id", userID.Hex()))
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// loadOptions fills the reference-data dropdowns. Failures leave the options
// empty; the form still renders with free-text entry disabled options.
func (h *Handler) loadOptions(ctx context.Context, data *editData) {
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

// dedupSports keeps the submitted interest order while dropping duplicates
// and blanks. Order matters: it drives the mutual-interest ranking.
func dedupSports(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
