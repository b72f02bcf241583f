// Package web holds the embedded page templates and the gin HTML renderer for them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"

	"saborconquista/internal/model"
)

//go:embed templates/*.gohtml templates/pages/*.gohtml
var templateFS embed.FS

// Page is the data every page template receives.
type Page struct {
	Title     string
	User      *model.User
	CartCount int
	Flash     string
	Error     string
	Data      any
}

// HasRole reports whether the page's user has one of the given roles.
func (p Page) HasRole(roles ...model.Role) bool {
	if p.User == nil {
		return false
	}
	for _, r := range roles {
		if p.User.Role == r {
			return true
		}
	}
	return false
}

// Renderer executes one template set per page, each sharing the layout.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the layout and every page once at startup.
func New() (*Renderer, error) {
	layout, err := template.New("layout.gohtml").Funcs(Funcs()).ParseFS(templateFS, "templates/layout.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.gohtml")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".gohtml")] = t
	}
	return &Renderer{pages: pages}, nil
}

// Instance implements render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		return render.Data{
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte("template " + name + " not found"),
		}
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Funcs are the helpers available in every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"price":      model.FormatPrice,
		"priceInput": model.FormatPriceInput,
		"roleLabel":  func(r model.Role) string { return r.Label() },
		"statusLabel": func(s model.OrderStatus) string {
			return s.Label()
		},
		"nextStatus": kitchenNext,
		"categoryName": func(id string) string {
			if c, ok := model.LookupCategory(id); ok {
				return c.Name
			}
			return id
		},
		"clock": func(t time.Time) string {
			if t.IsZero() {
				return "--:--"
			}
			return t.Local().Format("15:04")
		},
		"add": func(a, b int) int { return a + b },
	}
}

// kitchenNext is the forward step the board offers for s, or "" when there is none.
func kitchenNext(s model.OrderStatus) model.OrderStatus {
	next, ok := model.NextStatus(s)
	if !ok || !model.KitchenTransition(s, next) {
		return ""
	}
	return next
}
