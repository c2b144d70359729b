// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	vm := viewdata.NewBaseVM(r, nil, "Access denied", "/")
	if backURL != "" {
		vm.BackURL = backURL
	}

	templates.Render(w, r, "error_forbidden", pageData{
		BaseVM:  vm,
		Message: msg,
	})
}

// RenderNotFound shows a friendly "not found" page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "We couldn't find what you were looking for."
	}
	vm := viewdata.NewBaseVM(r, nil, "Not found", "/")
	if backURL != "" {
		vm.BackURL = backURL
	}

	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_notfound", pageData{
		BaseVM:  vm,
		Message: msg,
	})
}
