// internal/app/features/refdata/templates.go
package refdata

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "refdata",
		FS:       templateFS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
