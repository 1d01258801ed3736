package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pagePublic = "public.html"
	pageAdmin  = "admin.html"
)

// Renderer executes the embedded page templates.
type Renderer struct {
	public *template.Template
	admin  *template.Template
}

// NewRenderer parses the embedded templates. Each page is parsed together with
// the shared layout so both can define the same block names.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"routeToggle":    func(id string) string { return withParam(config.RouteToggle, config.ParamID, id) },
		"routeExportOne": func(id string) string { return withParam(config.RouteExportOne, config.ParamID, id) },
		"pickerProps":    func() []string { return config.PickerProperties },
		"dict":           dict,
	}

	parse := func(page string) (*template.Template, error) {
		return template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
	}

	public, err := parse(pagePublic)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTemplates, err)
	}
	admin, err := parse(pageAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTemplates, err)
	}
	return &Renderer{public: public, admin: admin}, nil
}

// Public writes the selection page.
func (r *Renderer) Public(w io.Writer, p PublicPage) error {
	return execute(w, r.public, p)
}

// Admin writes the management page.
func (r *Renderer) Admin(w io.Writer, p AdminPage) error {
	return execute(w, r.admin, p)
}

// execute renders into a buffer first so a template error never leaves a
// half-written page on the wire.
func execute(w io.Writer, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("%s: %w", config.ErrRenderPage, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// withParam fills a {name} placeholder of a route pattern.
func withParam(route, name, value string) string {
	return strings.Replace(route, "{"+name+"}", url.PathEscape(value), 1)
}

// dict builds template data from alternating keys and values.
func dict(pairs ...any) map[string]any {
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok {
			m[k] = pairs[i+1]
		}
	}
	return m
}
