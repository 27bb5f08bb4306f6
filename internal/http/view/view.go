// Package view renders the embedded HTML pages and the HTMX fragments that
// are swapped into them.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/jaekwang-park/todo-web/internal/model"
)

//go:embed templates
var templateFS embed.FS

// Page names.
const (
	PageHome    = "home"
	PageSignIn  = "signin"
	PageSignUp  = "signup"
	PageConfirm = "confirm"
	PageTodos   = "todos"
)

// Fragment names.
const (
	FragmentTodoItem = "todo_item"
	FragmentTodoList = "todo_list"
	FragmentAlert    = "alert"
)

// AlertKind selects the alert styling.
type AlertKind string

const (
	AlertError   AlertKind = "error"
	AlertSuccess AlertKind = "success"
	AlertInfo    AlertKind = "info"
)

type Alert struct {
	Kind    AlertKind
	Message string
}

// PageData is shared by every page template.
type PageData struct {
	Title    string
	SignedIn bool
	Email    string
	Todos    []model.Todo
}

type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

// New parses every page against the layout and the fragment set.
func New() (*Renderer, error) {
	fragments, err := template.ParseFS(templateFS, "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse fragments: %w", err)
	}

	pageFiles, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.ParseFS(templateFS,
			"templates/layout.html",
			"templates/fragments/*.html",
			file,
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages, fragments: fragments}, nil
}

// Page writes a full HTML document.
func (r *Renderer) Page(w http.ResponseWriter, status int, name string, data PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return render(w, status, t, "layout", data)
}

// Fragment writes a partial for an HTMX swap.
func (r *Renderer) Fragment(w http.ResponseWriter, status int, name string, data any) error {
	return render(w, status, r.fragments, name, data)
}

// render executes into a buffer first so a template error never leaves a
// half-written response behind.
func render(w http.ResponseWriter, status int, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
