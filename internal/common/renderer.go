package common

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

// LayoutTemplate is the entry point every page template is executed through.
const LayoutTemplate = "layout"

// TemplateRenderer implements echo.Renderer. Each page file is parsed into
// its own clone of the shared layout and partials so pages can define the
// same block names. Names that are not pages are looked up as partials,
// which is how htmx fragments are rendered.
type TemplateRenderer struct {
	shared *template.Template
	pages  map[string]*template.Template
}

// NewTemplateRenderer parses the shared templates matching sharedPattern and
// one page per file matching pagePattern, keyed by base file name.
func NewTemplateRenderer(fsys fs.FS, sharedPattern, pagePattern string, funcs template.FuncMap) (*TemplateRenderer, error) {
	shared, err := template.New("").Funcs(funcs).ParseFS(fsys, sharedPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shared templates: %w", err)
	}

	files, err := fs.Glob(fsys, pagePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		clone, err := shared.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", file, err)
		}
		pages[path.Base(file)] = page
	}

	return &TemplateRenderer{shared: shared, pages: pages}, nil
}

func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	if page, ok := t.pages[name]; ok {
		return page.ExecuteTemplate(w, LayoutTemplate, data)
	}
	if t.shared.Lookup(name) == nil {
		return fmt.Errorf("template %q not found", name)
	}
	return t.shared.ExecuteTemplate(w, name, data)
}

// HasPage reports whether a page template with the given file name exists.
func (t *TemplateRenderer) HasPage(name string) bool {
	_, ok := t.pages[name]
	return ok
}

// DataURL marks a data URL produced by the preview pipeline as safe for use
// in src attributes. Anything else is returned as a normal string and will be
// filtered by html/template.
func DataURL(s string) any {
	if strings.HasPrefix(s, "data:image/") && !strings.HasPrefix(s, "data:image/svg") {
		return template.URL(s)
	}
	return s
}
