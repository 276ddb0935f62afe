package main

import (
	"encoding/json"
	"net/http"
)

const (
	JSON = "json"
	HTML = "html"
)

type Page struct {
	Title   string
	Site    string
	Company string
	Assets  string
	Data    interface{}
}

type renderOpts struct {
	OutputFormat string
	StatusCode   int
}

func NewRenderOpts() *renderOpts {
	return &renderOpts{
		OutputFormat: HTML,
		StatusCode:   http.StatusOK,
	}
}

func Render(h *handler, w http.ResponseWriter, r *http.Request, title string, tpl string, data interface{}, opts *renderOpts) {
	if opts == nil {
		opts = NewRenderOpts()
	}
	if opts.StatusCode == 0 {
		opts.StatusCode = http.StatusOK
	}

	if opts.OutputFormat == JSON {
		renderJSON(h, w, r, data, *opts)
		return
	}

	page := Page{
		Title:   title,
		Site:    h.Global.Site,
		Company: h.Global.Company,
		Assets:  h.Assets(),
		Data:    data,
	}

	renderHTML(h, w, r, tpl, page, *opts)
}

func renderJSON(h *handler, w http.ResponseWriter, r *http.Request, data interface{}, opts renderOpts) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(opts.StatusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Println(r.Host, r.URL.Path, ":", err)
	}
}

func renderHTML(h *handler, w http.ResponseWriter, r *http.Request, tpl string, page Page, opts renderOpts) {
	if tpl == "" {
		tpl = BaseFilename
	}

	t, err := h.Template(tpl)
	if err != nil {
		HTTPError(h, w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(opts.StatusCode)
	if err := t.Execute(w, page); err != nil {
		h.log.Println(r.Host, r.URL.Path, ":", err)
	}
}
