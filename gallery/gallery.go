// Package gallery turns a filtered metadata table into the sections and image
// tiles of one rendered page. Building a page never fails: rows whose image is
// missing become warning tiles and the rest of the page is built as usual.
package gallery

import (
	"fmt"
	"strings"

	"github.com/carbocation/microview/filter"
	"github.com/carbocation/microview/metadata"
)

const (
	DefaultPerRow = 2
	MaxPerRow     = 8
)

// View picks between the plain filtered gallery and the two compare views,
// which pin one sample (or one method) and lay the other images out by a
// grouping column.
type View string

const (
	ViewAll    View = "all"
	ViewSample View = "sample"
	ViewMethod View = "method"
)

func ParseView(s string) View {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewSample:
		return ViewSample
	case ViewMethod:
		return ViewMethod
	}
	return ViewAll
}

func (v View) field() metadata.Field {
	switch v {
	case ViewSample:
		return metadata.FieldSample
	case ViewMethod:
		return metadata.FieldMethod
	}
	return ""
}

// Options are the user's choices for one page.
type Options struct {
	Query   filter.Query
	View    View
	Focus   string
	GroupBy metadata.Field
	PerRow  int
	Caption CaptionStyle
}

// Normalized clamps PerRow and fills defaults.
func (o Options) Normalized() Options {
	if o.PerRow < 1 {
		o.PerRow = DefaultPerRow
	}
	if o.PerRow > MaxPerRow {
		o.PerRow = MaxPerRow
	}
	if o.View == "" {
		o.View = ViewAll
	}
	if o.Caption == "" {
		o.Caption = CaptionFilename
	}
	if o.View != ViewAll && o.GroupBy == "" {
		o.GroupBy = metadata.FieldMethod
		if o.View == ViewMethod {
			o.GroupBy = metadata.FieldSample
		}
	}

	return o
}

// Tile is one image slot.
type Tile struct {
	Row     metadata.Row
	Caption string
	Missing bool
	Warning string

	// Err says where the image was looked for. It goes to the log, never
	// onto the page.
	Err error
}

// Section is a titled run of tiles sharing one value of the grouping column.
type Section struct {
	Title string
	Tiles []Tile
}

// Page is everything needed to render one gallery request.
type Page struct {
	Options

	Title        string
	Sections     []Section
	Total        int
	Matched      int
	Missing      int
	Facets       map[metadata.Field][]string
	FocusOptions []string
	Warnings     []string
}

// Checker reports whether a row's image exists; *imagestore.Resolver
// satisfies it.
type Checker interface {
	Exists(row metadata.Row) error
}

// Build filters table according to opts and resolves every surviving row
// through images.
func Build(table *metadata.Table, opts Options, images Checker) Page {
	opts = opts.Normalized()

	all := table.Rows()
	page := Page{
		Options: opts,
		Title:   "All images",
		Total:   len(all),
		Facets:  make(map[metadata.Field][]string, len(metadata.Fields)),
	}
	for _, field := range metadata.Fields {
		page.Facets[field] = filter.Facets(all, field)
	}

	rows := opts.Query.Apply(table)

	if focusField := opts.View.field(); focusField != "" {
		page.FocusOptions = filter.Facets(rows, focusField)
		if len(page.FocusOptions) == 0 {
			page.Warnings = append(page.Warnings, "No data matches your filters.")
			return page
		}

		if !containsString(page.FocusOptions, opts.Focus) {
			page.Focus = page.FocusOptions[0]
		}

		focused := make([]metadata.Row, 0, len(rows))
		for _, row := range rows {
			if row.Value(focusField) == page.Focus {
				focused = append(focused, row)
			}
		}
		rows = focused
		page.Title = fmt.Sprintf("%s: %s", focusField.Title(), page.Focus)
	}

	page.Matched = len(rows)

	for _, group := range filter.GroupBy(rows, opts.GroupBy) {
		section := Section{}
		if group.Field != "" {
			section.Title = fmt.Sprintf("%s: %s", group.Field.Title(), group.Key)
		}

		for _, row := range group.Rows {
			tile := Tile{Row: row, Caption: Caption(row, opts.Caption)}

			if err := images.Exists(row); err != nil {
				tile.Missing = true
				tile.Warning = fmt.Sprintf("Could not open: %s", row.Filename)
				page.Missing++
				tile.Err = err
				page.Warnings = append(page.Warnings, tile.Warning)
			}

			section.Tiles = append(section.Tiles, tile)
		}

		page.Sections = append(page.Sections, section)
	}

	if page.Matched == 0 {
		page.Warnings = append(page.Warnings, "No data matches your filters.")
	}

	return page
}

// Rows flattens the page back into its rows, in display order.
func (p Page) Rows() []metadata.Row {
	var out []metadata.Row
	for _, s := range p.Sections {
		for _, t := range s.Tiles {
			out = append(out, t.Row)
		}
	}
	return out
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
