// internal/app/features/profile/view.go
package profile

import (
	"context"
	"net/http"

	membershipstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/memberships"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type viewData struct {
	viewdata.BaseVM
	Name   string
	Email  string
	City   string
	Area   string
	Skill  string
	Sports []string

	PendingCount  int
	AcceptedCount int
}

// ServeView handles GET /profile (the signed-in user's own profile).
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := userstore.New(h.DB).GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: load user failed", err, "Unable to load your profile.", "/")
		return
	}

	data := viewData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Your profile", "/"),
		Name:   user.Name,
		Email:  user.Email,
		City:   user.City,
		Area:   user.Area,
		Skill:  user.Skill,
		Sports: user.Sports,
	}

	records, err := membershipstore.New(h.DB).ListByUser(ctx, userID)
	if err != nil {
		h.Log.Warn("profile: membership lookup failed")
	} else {
		for _, m := range records {
			switch m.Status {
			case models.MembershipPending:
				data.PendingCount++
			case models.MembershipAccepted:
				data.AcceptedCount++
			}
		}
	}

	templates.Render(w, r, "profile_view", data)
}
