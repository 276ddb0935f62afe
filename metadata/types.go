package metadata

import (
	"fmt"
	"strings"
)

// Method is the imaging method used to capture an image.
type Method string

const (
	MethodPLM Method = "PLM" // Polarising light microscopy
	MethodPCM Method = "PCM" // Phase contrast microscopy
	MethodEHD Method = "EHD" // Elastohydrodynamic imaging derived from PCM
)

var Methods = []Method{MethodPLM, MethodPCM, MethodEHD}

func (m Method) Valid() bool {
	for _, v := range Methods {
		if m == v {
			return true
		}
	}
	return false
}

// Location is the site where an image was acquired.
type Location string

const (
	LocationBIU  Location = "BIU"
	LocationNCAT Location = "nCAT"
	LocationNC2  Location = "nC2"
)

var Locations = []Location{LocationBIU, LocationNCAT, LocationNC2}

func (l Location) Valid() bool {
	for _, v := range Locations {
		if l == v {
			return true
		}
	}
	return false
}

// Mode is the optical configuration applied during capture.
type Mode string

const (
	ModeNA   Mode = "NA"
	ModeNull Mode = "Null"
	ModeCP   Mode = "CP"  // Cross-polarised
	ModeWP   Mode = "WP"  // Without polariser
	ModeDIC  Mode = "DIC" // Differential interference contrast
)

var Modes = []Mode{ModeNA, ModeNull, ModeCP, ModeWP, ModeDIC}

func (m Mode) Valid() bool {
	for _, v := range Modes {
		if m == v {
			return true
		}
	}
	return false
}

// Field names a filterable metadata column.
type Field string

const (
	FieldMethod        Field = "method"
	FieldLocation      Field = "location"
	FieldSample        Field = "sample"
	FieldMode          Field = "mode"
	FieldMagnification Field = "magnification"
)

// Fields lists the filterable columns in display order.
var Fields = []Field{FieldMethod, FieldLocation, FieldSample, FieldMode, FieldMagnification}

// Title is the human readable column name.
func (f Field) Title() string {
	if f == "" {
		return ""
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}

// ParseField accepts a column name in any case.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "sample_id" {
		name = string(FieldSample)
	}

	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}

	return "", fmt.Errorf("unknown metadata field %q", name)
}
