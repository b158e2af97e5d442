// Package view renders server-side HTML pages from embedded templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/tasklist/tasklist/internal/model"
)

// Page names.
const (
	PageHome   = "home"
	PageSignup = "signup"
	PageLogin  = "login"
	PageTodos  = "todos"
	PageUpdate = "update"
	PageError  = "error"
)

var pageNames = []string{PageHome, PageSignup, PageLogin, PageTodos, PageUpdate, PageError}

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data passed to every template. Fields a page does not use stay zero.
type Page struct {
	Title string
	User  *model.UserRef
	Flash string
	Error string

	// Username is the sticky value of the signup and login forms.
	// Passwords are never echoed.
	Username string
	// Content is the sticky value of the create and edit forms.
	Content string

	Todos []*model.Todo
	Todo  *model.Todo

	Status  int
	Message string
}

// Renderer writes a named page with a status code.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, page Page) error
}

// Templates is the html/template Renderer.
type Templates struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04")
	},
	"isotime": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
	"statustext": http.StatusText,
}

// New parses the embedded templates. Each page is compiled with the layout.
func New() (*Templates, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return &Templates{pages: pages}, nil
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, page Page) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
