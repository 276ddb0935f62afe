// Package filter narrows a metadata table down to the rows matching a user's
// selection. Every function here is pure: the input table is never modified
// and the output order follows the table order.
package filter

import (
	"github.com/carbocation/microview/metadata"
	"gopkg.in/guregu/null.v3"
)

// Selection constrains the four facet columns. A field that is not Valid
// places no constraint on the rows.
type Selection struct {
	Method   null.String
	Location null.String
	Sample   null.String
	Mode     null.String
}

// IsEmpty is true when no field is set.
func (s Selection) IsEmpty() bool {
	return !s.Method.Valid && !s.Location.Valid && !s.Sample.Valid && !s.Mode.Valid
}

// Matches reports whether every set field equals the row's value.
func (s Selection) Matches(row metadata.Row) bool {
	if s.Method.Valid && s.Method.String != string(row.Method) {
		return false
	}
	if s.Location.Valid && s.Location.String != string(row.Location) {
		return false
	}
	if s.Sample.Valid && s.Sample.String != row.SampleID {
		return false
	}
	if s.Mode.Valid && s.Mode.String != string(row.Mode) {
		return false
	}

	return true
}

// Set returns a copy of s with field constrained to value. Magnification is
// not part of a Selection and is ignored here; see Query.
func (s Selection) Set(field metadata.Field, value string) Selection {
	switch field {
	case metadata.FieldMethod:
		s.Method = null.StringFrom(value)
	case metadata.FieldLocation:
		s.Location = null.StringFrom(value)
	case metadata.FieldSample:
		s.Sample = null.StringFrom(value)
	case metadata.FieldMode:
		s.Mode = null.StringFrom(value)
	}

	return s
}

// Apply returns the rows of table where every set field of sel equals the
// row's corresponding field. With an empty selection the whole table is
// returned. The result is never nil.
func Apply(table *metadata.Table, sel Selection) []metadata.Row {
	return applyRows(table.Rows(), sel.Matches)
}

func applyRows(rows []metadata.Row, keep func(metadata.Row) bool) []metadata.Row {
	out := make([]metadata.Row, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}

	return out
}
