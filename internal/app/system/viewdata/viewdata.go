// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"context"
	"net/http"

	notificationstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/notifications"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/authz"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"go.mongodb.org/mongo-driver/mongo"
)

// BaseVM contains the common fields every page template expects.
// Embed it in feature-specific view models:
//
//	type eventListData struct {
//	    viewdata.BaseVM
//	    Events []eventRow
//	}
type BaseVM struct {
	SiteName   string
	IsLoggedIn bool
	Role       string
	UserName   string

	Title       string
	BackURL     string
	CurrentPath string

	// UnreadCount feeds the notification badge in the nav bar.
	UnreadCount int64
}

// NewBaseVM populates the shared view model from the request context. The
// unread badge is best-effort: a failed count renders as zero rather than
// failing the page.
func NewBaseVM(r *http.Request, db *mongo.Database, title, backDefault string) BaseVM {
	role, name, userID, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    "SportsBuddy",
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
	}

	if signedIn && db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
		defer cancel()
		if n, err := notificationstore.New(db).CountUnread(ctx, userID); err == nil {
			vm.UnreadCount = n
		}
	}
	return vm
}
