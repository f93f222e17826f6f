package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"inkwell/internal/models"
)

//go:embed templates
var templateFS embed.FS

const (
	templateRoot   = "templates"
	layoutTemplate = "layout"
)

// Views renders the embedded html/template pages for fiber. Each page is
// parsed together with the layout and the shared includes, so every page can
// define its own "title" and "content" blocks.
type Views struct {
	fsys  fs.FS
	funcs template.FuncMap

	mu    sync.RWMutex
	pages map[string]*template.Template
}

func NewViews() *Views {
	return &Views{
		fsys: templateFS,
		funcs: template.FuncMap{
			"media":    mediaURL,
			"truncate": models.Truncate,
			"date": func(t time.Time) string {
				return t.Format("2 January 2006")
			},
			"deref": func(id *uint) uint {
				if id == nil {
					return 0
				}
				return *id
			},
		},
	}
}

// Load parses every page under templates/. Pages are named by their path
// without the extension, e.g. "posts/index".
func (v *Views) Load() error {
	base, err := template.New(layoutTemplate).Funcs(v.funcs).ParseFS(v.fsys,
		path.Join(templateRoot, "layout.html"),
		path.Join(templateRoot, "includes", "*.html"),
	)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template)
	err = fs.WalkDir(v.fsys, templateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(p, templateRoot+"/")
		if d.IsDir() || !strings.HasSuffix(p, ".html") || rel == "layout.html" || strings.HasPrefix(rel, "includes/") {
			return nil
		}

		page, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := page.ParseFS(v.fsys, p); err != nil {
			return fmt.Errorf("parse %s: %w", rel, err)
		}
		pages[strings.TrimSuffix(rel, ".html")] = page
		return nil
	})
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.pages = pages
	v.mu.Unlock()
	return nil
}

// Render executes page name inside the given layout, or the page's content
// block alone when no layout is given.
func (v *Views) Render(w io.Writer, name string, bind interface{}, layouts ...string) error {
	v.mu.RLock()
	page, ok := v.pages[name]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	entry := "content"
	if len(layouts) > 0 && layouts[0] != "" {
		entry = layouts[0]
	}
	return page.ExecuteTemplate(w, entry, bind)
}

func mediaURL(rel string) string {
	return "/media/" + strings.TrimPrefix(rel, "/")
}
