// internal/app/features/requests/templates.go
package requests

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "requests",
		FS:       templateFS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
