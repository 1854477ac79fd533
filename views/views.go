package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"todo-service/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names
const (
	PageList     = "list"
	PageLogin    = "login"
	PageRegister = "register"
	PageAbout    = "about"
	PageAlert    = "alert"
	PageError    = "error"
)

var pages = []string{PageList, PageLogin, PageRegister, PageAbout, PageAlert, PageError}

// Page is the data every template receives
type Page struct {
	Title   string
	Message string
	UserID  string
	List    *models.List
}

// Renderer executes the embedded page templates
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page against the shared layout
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Render writes page with the given status; the page is buffered so a template error never
// leaves a half-written response
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data Page) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
