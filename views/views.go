// Package views holds the page templates.
package views

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var files embed.FS

// Templates parses every page template. It panics on a malformed template.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "templates/*.tmpl"))
}
