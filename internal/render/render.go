// Package render holds the HTML pages and fragments of the app, embedded in the binary.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/live"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names.
const (
	PageHome      = "home.html"
	PageDashboard = "dashboard.html"
	PageAuthError = "error.html"
)

var pages = []string{PageHome, PageDashboard, PageAuthError}

// HomeData feeds the sign-in page.
type HomeData struct {
	Title string
}

// DashboardData feeds the dashboard page.
type DashboardData struct {
	Identity domain.Identity
	List     ListData
	Form     live.FormState
}

// ListData feeds the bookmark list fragment.
type ListData struct {
	Items    []domain.Bookmark
	Deleting map[string]bool
}

// ErrorData feeds the error page.
type ErrorData struct {
	Title   string
	Message string
}

// Renderer executes the embedded templates.
type Renderer struct {
	fragments *template.Template
	pages     map[string]*template.Template
}

// New parses every embedded template.
func New() (*Renderer, error) {
	base, err := template.New("").ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse base templates: %w", err)
	}

	r := &Renderer{
		fragments: base,
		pages:     make(map[string]*template.Template, len(pages)),
	}
	for _, name := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base for %s: %w", name, err)
		}
		if r.pages[name], err = clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return r, nil
}

// Page renders a full page. The body is buffered so a template error still yields a clean 500.
func (r *Renderer) Page(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderList renders the bookmark list fragment pushed to live sessions.
func (r *Renderer) RenderList(items []domain.Bookmark, deleting map[string]bool) (string, error) {
	var buf bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&buf, "bookmark-list", ListData{Items: items, Deleting: deleting}); err != nil {
		return "", fmt.Errorf("render bookmark list: %w", err)
	}
	return buf.String(), nil
}

// Static serves the embedded scripts and styles.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embedded path, cannot fail
	}
	return http.FileServer(http.FS(sub))
}
