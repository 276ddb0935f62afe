package filter

import (
	"net/url"
	"sort"
	"strings"

	"github.com/carbocation/microview/metadata"
)

// Query is the full set of constraints the gallery page can express: a
// Selection, any-of sets per column (several values ticked in one
// dropdown), and a free-text search over sample and filename.
type Query struct {
	Selection

	// AnyOf maps a column to the values it may take. An empty or missing
	// entry places no constraint.
	AnyOf map[metadata.Field][]string

	// Search is matched case-insensitively against the sample and the
	// filename.
	Search string
}

// Matches reports whether row satisfies every constraint in q.
func (q Query) Matches(row metadata.Row) bool {
	if !q.Selection.Matches(row) {
		return false
	}

	for field, values := range q.AnyOf {
		if len(values) == 0 {
			continue
		}
		if !contains(values, row.Value(field)) {
			return false
		}
	}

	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		if !strings.Contains(strings.ToLower(row.SampleID), term) &&
			!strings.Contains(strings.ToLower(row.Filename), term) {
			return false
		}
	}

	return true
}

// Apply filters table by q, preserving table order.
func (q Query) Apply(table *metadata.Table) []metadata.Row {
	return applyRows(table.Rows(), q.Matches)
}

// Values returns the values q constrains field to, whether through the
// Selection or through AnyOf.
func (q Query) Values(field metadata.Field) []string {
	out := append([]string(nil), q.AnyOf[field]...)

	var sel string
	var set bool
	switch field {
	case metadata.FieldMethod:
		sel, set = q.Method.String, q.Method.Valid
	case metadata.FieldLocation:
		sel, set = q.Location.String, q.Location.Valid
	case metadata.FieldSample:
		sel, set = q.Sample.String, q.Sample.Valid
	case metadata.FieldMode:
		sel, set = q.Mode.String, q.Mode.Valid
	}
	if set && !contains(out, sel) {
		out = append(out, sel)
	}

	return out
}

// ParseQuery reads a Query from URL parameters. A parameter given once sets
// the Selection field; given several times it becomes an any-of set. Empty
// values are ignored so an "All" option can be submitted as "".
func ParseQuery(v url.Values) Query {
	q := Query{AnyOf: make(map[metadata.Field][]string)}

	for _, field := range metadata.Fields {
		values := nonEmpty(v[string(field)])
		switch {
		case len(values) == 0:
		case len(values) == 1 && field != metadata.FieldMagnification:
			q.Selection = q.Selection.Set(field, values[0])
		default:
			q.AnyOf[field] = values
		}
	}

	q.Search = strings.TrimSpace(v.Get("q"))

	return q
}

// Encode writes q back into URL parameters, the inverse of ParseQuery.
func (q Query) Encode(v url.Values) {
	for _, field := range metadata.Fields {
		for _, value := range q.Values(field) {
			v.Add(string(field), value)
		}
	}

	if q.Search != "" {
		v.Set("q", q.Search)
	}
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}

	return false
}

// Facets returns the sorted distinct values of field across rows.
func Facets(rows []metadata.Row, field metadata.Field) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, row := range rows {
		v := row.Value(field)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	sort.Strings(out)

	return out
}
