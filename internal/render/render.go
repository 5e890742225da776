// Package render executes HTML templates for pages and indexes. Default
// layouts are embedded; a site can override any of them from its layouts
// directory.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

//go:embed layouts/*.html
var defaultLayouts embed.FS

// SiteData is the site-wide template context.
type SiteData struct {
	Title       string
	Description string
	BaseURL     string
	Author      string
}

// PageData is the context for rendering a single page.
type PageData struct {
	Site    SiteData
	Page    *site.Page
	Content template.HTML
}

// IndexData is the context for the home page and tag indexes.
type IndexData struct {
	Site  SiteData
	Posts []*site.Page
	Tag   string
}

// Engine holds the parsed template set.
type Engine struct {
	tmpl *template.Template
}

// New parses the embedded layouts, then any overrides from layoutsDir.
// A template defined in layoutsDir with the same name replaces the default.
func New(layoutsDir string) (*Engine, error) {
	tmpl, err := template.New("layouts").Funcs(funcMap()).ParseFS(defaultLayouts, "layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse embedded layouts: %w", err)
	}

	if layoutsDir != "" {
		if _, err := os.Stat(layoutsDir); err == nil {
			tmpl, err = tmpl.ParseGlob(filepath.Join(layoutsDir, "*.html"))
			if err != nil {
				return nil, fmt.Errorf("parse layout overrides in %s: %w", layoutsDir, err)
			}
		}
	}

	return &Engine{tmpl: tmpl}, nil
}

// Page renders a single page through the "page" template.
func (e *Engine) Page(data PageData) ([]byte, error) {
	return e.execute("page", data)
}

// Index renders the home page post listing.
func (e *Engine) Index(data IndexData) ([]byte, error) {
	return e.execute("index", data)
}

// TagIndex renders the post listing for one tag.
func (e *Engine) TagIndex(data IndexData) ([]byte, error) {
	return e.execute("tag", data)
}

func (e *Engine) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"dateFormat": func(layout string, v interface {
			Format(string) string
		}) string {
			return v.Format(layout)
		},
	}
}
