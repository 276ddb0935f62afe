package main

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"runtime"
	"strconv"

	"github.com/carbocation/microview/compileinfo"
	"github.com/carbocation/microview/filter"
	"github.com/carbocation/microview/gallery"
	"github.com/carbocation/microview/metadata"
	"github.com/carbocation/microview/summary"
	"github.com/gorilla/mux"
)

// Option is one entry of a dropdown on the gallery page.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FacetControl is the filter dropdown for one column.
type FacetControl struct {
	Field   metadata.Field
	Title   string
	Options []Option
}

func (h *handler) pageOptions(form url.Values) gallery.Options {
	opts := gallery.Options{
		Query:   filter.ParseQuery(form),
		View:    gallery.ParseView(form.Get("view")),
		Focus:   form.Get("focus"),
		PerRow:  intParam(form, "per_row", h.Global.PerRow),
		Caption: gallery.ParseCaptionStyle(form.Get("caption")),
	}

	if group := form.Get("group"); group != "" {
		if field, err := metadata.ParseField(group); err == nil {
			opts.GroupBy = field
		}
	}

	return opts.Normalized()
}

// queryString re-encodes the filters of q, so links to the other views carry
// the same selection.
func queryString(q filter.Query) string {
	v := url.Values{}
	q.Encode(v)
	return v.Encode()
}

func withQuery(path string, q filter.Query) template.URL {
	if qs := queryString(q); qs != "" {
		return template.URL(path + "?" + qs)
	}
	return template.URL(path)
}

func (h *handler) Index(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		HTTPError(h, w, r, err, http.StatusBadRequest)
		return
	}

	opts := h.pageOptions(r.Form)
	page := gallery.Build(h.Global.Table(), opts, h.Global.images)

	if page.Missing > 0 {
		h.log.Printf("%d of %d matching images could not be found\n", page.Missing, page.Matched)
		for _, section := range page.Sections {
			for _, tile := range section.Tiles {
				if tile.Missing {
					h.log.Println(tile.Err)
				}
			}
		}
	}

	controls := make([]FacetControl, 0, len(metadata.Fields))
	for _, field := range metadata.Fields {
		selected := make(map[string]bool)
		for _, v := range opts.Query.Values(field) {
			selected[v] = true
		}

		control := FacetControl{Field: field, Title: field.Title()}
		for _, v := range page.Facets[field] {
			control.Options = append(control.Options, Option{Value: v, Label: v, Selected: selected[v]})
		}
		controls = append(controls, control)
	}

	views := []Option{
		{Value: string(gallery.ViewAll), Label: "Filtered gallery"},
		{Value: string(gallery.ViewSample), Label: "Compare one sample"},
		{Value: string(gallery.ViewMethod), Label: "Compare one method"},
	}
	for i := range views {
		views[i].Selected = views[i].Value == string(page.View)
	}

	focus := make([]Option, 0, len(page.FocusOptions))
	for _, v := range page.FocusOptions {
		focus = append(focus, Option{Value: v, Label: v, Selected: v == page.Focus})
	}

	groups := []Option{{Value: "", Label: "(none)", Selected: page.GroupBy == ""}}
	for _, field := range metadata.Fields {
		groups = append(groups, Option{Value: string(field), Label: field.Title(), Selected: field == page.GroupBy})
	}

	captions := make([]Option, 0, len(gallery.CaptionStyles))
	for _, c := range gallery.CaptionStyles {
		captions = append(captions, Option{Value: string(c), Label: string(c), Selected: c == page.Caption})
	}

	output := struct {
		Page        gallery.Page
		Controls    []FacetControl
		Views       []Option
		Focus       []Option
		Groups      []Option
		Captions    []Option
		Search      string
		ThumbWidth  int
		DownloadURL template.URL
		RowsURL     template.URL
		SummaryURL  template.URL
	}{
		Page:        page,
		Controls:    controls,
		Views:       views,
		Focus:       focus,
		Groups:      groups,
		Captions:    captions,
		Search:      opts.Query.Search,
		ThumbWidth:  h.Global.ThumbWidth,
		DownloadURL: withQuery("/download.csv", opts.Query),
		RowsURL:     withQuery("/api/rows", opts.Query),
		SummaryURL:  withQuery("/summary", opts.Query),
	}

	Render(h, w, r, fmt.Sprintf("%s: %s", h.Global.Site, page.Title), "index.html", output, nil)
}

// filtered applies the query in the request's URL to the table.
func (h *handler) filtered(r *http.Request) (filter.Query, []metadata.Row) {
	q := filter.ParseQuery(r.URL.Query())
	return q, q.Apply(h.Global.Table())
}

func (h *handler) APIRows(w http.ResponseWriter, r *http.Request) {
	_, rows := h.filtered(r)

	Render(h, w, r, "", "", rows, &renderOpts{OutputFormat: JSON})
}

func (h *handler) APIRow(w http.ResponseWriter, r *http.Request) {
	row, code, err := h.rowFromRequest(r)
	if err != nil {
		JSONError(h, w, r, err, code)
		return
	}

	Render(h, w, r, "", "", row, &renderOpts{OutputFormat: JSON})
}

func (h *handler) APIFacets(w http.ResponseWriter, r *http.Request) {
	_, rows := h.filtered(r)

	output := make(map[metadata.Field][]string, len(metadata.Fields))
	for _, field := range metadata.Fields {
		output[field] = filter.Facets(rows, field)
	}

	Render(h, w, r, "", "", output, &renderOpts{OutputFormat: JSON})
}

func (h *handler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	_, rows := h.filtered(r)

	var buf bytes.Buffer
	if err := metadata.WriteCSV(&buf, rows); err != nil {
		HTTPError(h, w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="metadata_filtered.csv"`)
	w.Write(buf.Bytes())
}

func (h *handler) Summary(w http.ResponseWriter, r *http.Request) {
	q, rows := h.filtered(r)

	s, err := summary.Summarize(rows)
	if err != nil {
		HTTPError(h, w, r, err)
		return
	}

	charts := make(map[metadata.Field]template.URL, len(metadata.Fields))
	for _, field := range metadata.Fields {
		charts[field] = withQuery(fmt.Sprintf("/chart/%s.png", field), q)
	}

	output := struct {
		Summary    summary.Summary
		Charts     map[metadata.Field]template.URL
		GalleryURL template.URL
	}{
		Summary:    s,
		Charts:     charts,
		GalleryURL: withQuery("/", q),
	}

	Render(h, w, r, "Summary", "summary.html", output, nil)
}

func (h *handler) Chart(w http.ResponseWriter, r *http.Request) {
	field, err := metadata.ParseField(mux.Vars(r)["field"])
	if err != nil {
		HTTPError(h, w, r, err, http.StatusNotFound)
		return
	}

	_, rows := h.filtered(r)
	counts := summary.Counts(rows, field)
	if len(counts) == 0 {
		HTTPError(h, w, r, fmt.Errorf("no rows match the current filters"), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := summary.BarChart(&buf, field.Title(), counts); err != nil {
		HTTPError(h, w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (h *handler) Version(w http.ResponseWriter, r *http.Request) {
	Render(h, w, r, "", "", compileinfo.Get(), &renderOpts{OutputFormat: JSON})
}

func (h *handler) Goroutines(w http.ResponseWriter, r *http.Request) {
	goroutines := fmt.Sprintf("%d goroutines are currently active\n", runtime.NumGoroutine())

	w.Write([]byte(goroutines))
}

// rowFromRequest looks up the table row named by the {index} route variable.
func (h *handler) rowFromRequest(r *http.Request) (metadata.Row, int, error) {
	idx := mux.Vars(r)["index"]
	index, err := strconv.Atoi(idx)
	if err != nil {
		return metadata.Row{}, http.StatusBadRequest, fmt.Errorf("image index %q is not a number", idx)
	}

	row, ok := h.Global.Table().Row(index)
	if !ok {
		return metadata.Row{}, http.StatusNotFound, fmt.Errorf("image index %d is out of range of the %d rows", index, h.Global.Table().Len())
	}

	return row, http.StatusOK, nil
}
