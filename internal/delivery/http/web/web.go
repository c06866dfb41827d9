package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// ContactPage is the template name of the contact form page
const ContactPage = "contact.html"

// Templates parses the embedded page templates
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}
