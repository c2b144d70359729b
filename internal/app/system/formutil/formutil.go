// Package formutil provides helpers for re-rendering forms with validation
// errors: the user's entered values echoed back plus an error message, with
// the common page fields already populated.
package formutil

import (
	"html/template"
	"net/http"

	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// Base contains common fields for form pages. Embed it in form data structs.
type Base struct {
	SiteName    string
	Title       string
	IsLoggedIn  bool
	Role        string
	UserName    string
	BackURL     string
	CurrentPath string
	UnreadCount int64
	Error       template.HTML
}

// SetBase populates the common Base fields from the request context.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	role, uname, _, signedIn := authz.UserCtx(r)
	b.SiteName = "SportsBuddy"
	b.Title = title
	b.IsLoggedIn = signedIn
	b.Role = role
	b.UserName = uname
	b.BackURL = httpnav.ResolveBackURL(r, backDefault)
	b.CurrentPath = httpnav.CurrentPath(r)
}

// SetError sets the error message shown above the form.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}
