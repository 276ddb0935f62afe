package metadata

import (
	"fmt"

	"gopkg.in/guregu/null.v3"
)

// Row describes one image. Rows are values and are never modified once the
// Table holding them has been built.
type Row struct {
	Index              int        `json:"index"`
	SampleID           string     `json:"sample"`
	Method             Method     `json:"method"`
	Location           Location   `json:"location"`
	Mode               Mode       `json:"mode"`
	Filename           string     `json:"filename"`
	Magnification      string     `json:"magnification"`
	MagnificationValue null.Float `json:"magnification_value"`
	Ext                string     `json:"ext"`
	RelPath            string     `json:"rel_path"`
}

// Path is the location of the image relative to the image root.
func (r Row) Path() string {
	if r.RelPath != "" {
		return r.RelPath
	}

	return r.Filename
}

// Value returns the row's value for the given column.
func (r Row) Value(f Field) string {
	switch f {
	case FieldMethod:
		return string(r.Method)
	case FieldLocation:
		return string(r.Location)
	case FieldSample:
		return r.SampleID
	case FieldMode:
		return string(r.Mode)
	case FieldMagnification:
		return r.Magnification
	}

	return ""
}

func (r Row) String() string {
	return fmt.Sprintf("{%s,%s,%s,%s,%q}", r.Method, r.Location, r.SampleID, r.Mode, r.Filename)
}
