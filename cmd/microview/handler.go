package main

import (
	"fmt"
	"html/template"
	"sync"

	"github.com/carbocation/microview/metadata"
	"github.com/gorilla/mux"
)

const (
	BaseFilename = "_base.html"
)

// handler provides global values that must be
// safe for concurrent use from multiple goroutines
// to each handler method.
type handler struct {
	*Global

	router *mux.Router

	assetsOnce sync.Once
	assets     string

	// Mutex protected values
	mu       sync.RWMutex
	template map[string]*template.Template
}

// Assets is the random path prefix under which static files are served. It
// changes on every launch so long cache lifetimes never serve stale files.
func (h *handler) Assets() string {
	h.assetsOnce.Do(func() {
		h.Global.log.Println("Initializing Assets")
		h.assets = fmt.Sprintf("/%s", RandHeteroglyphs(10))
	})

	return h.assets
}

var templateFuncs = template.FuncMap{
	"add":   func(a, b int) int { return a + b },
	"title": func(f metadata.Field) string { return f.Title() },
}

// Template returns the named page template layered over the base templates.
// Templates are parsed on first use and cached.
func (h *handler) Template(templateFilename string) (*template.Template, error) {
	// Prevent execution of the BaseFilename template, which would prevent future copies
	templateName := templateFilename
	if templateFilename == BaseFilename {
		templateName = fmt.Sprintf("CLONE%s", BaseFilename)
	}

	h.mu.RLock()
	tpl, ok := h.template[templateName]
	h.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.template == nil {
		h.Global.log.Println("Initializing HTML templates")

		base, err := template.New(BaseFilename).Funcs(templateFuncs).ParseFS(embeddedTemplates, "templates/_*.html")
		if err != nil {
			return nil, fmt.Errorf("handler.go:Template: %w", err)
		}

		h.template = map[string]*template.Template{BaseFilename: base}
	}

	// Another request may have built it while we waited for the lock.
	if tpl, ok := h.template[templateName]; ok {
		return tpl, nil
	}

	// Generate a clone of the base template so you don't contaminate it with the
	// derivative template's `define` statements.
	h.Global.log.Println("Initializing HTML template for", templateFilename)
	clone, err := h.template[BaseFilename].Clone()
	if err != nil {
		return nil, fmt.Errorf("handler.go:Template: %w", err)
	}

	if templateFilename != BaseFilename {
		clone, err = clone.ParseFS(embeddedTemplates, "templates/"+templateFilename)
		if err != nil {
			return nil, fmt.Errorf("handler.go:Template: %w", err)
		}
	}

	h.template[templateName] = clone

	return clone, nil
}
