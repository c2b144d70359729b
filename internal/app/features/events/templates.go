// internal/app/features/events/templates.go
package events

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "events",
		FS:       templateFS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
