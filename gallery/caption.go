package gallery

import (
	"fmt"
	"strings"

	"github.com/carbocation/microview/metadata"
)

// CaptionStyle selects the text shown under each image.
type CaptionStyle string

const (
	CaptionFilename CaptionStyle = "filename"
	CaptionShort    CaptionStyle = "short"
	CaptionFull     CaptionStyle = "full"
	CaptionNone     CaptionStyle = "none"
)

var CaptionStyles = []CaptionStyle{CaptionFilename, CaptionShort, CaptionFull, CaptionNone}

// ParseCaptionStyle falls back to CaptionFilename for unknown input.
func ParseCaptionStyle(s string) CaptionStyle {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range CaptionStyles {
		if string(c) == s {
			return c
		}
	}

	return CaptionFilename
}

// Caption renders the caption for row in the given style.
func Caption(row metadata.Row, style CaptionStyle) string {
	switch style {
	case CaptionNone:
		return ""
	case CaptionShort:
		return fmt.Sprintf("%s | %s | %s", row.Method, row.SampleID, row.Magnification)
	case CaptionFull:
		return fmt.Sprintf("Method: %s • Location: %s • Sample: %s • Mode: %s • Mag: %s",
			row.Method, row.Location, row.SampleID, row.Mode, row.Magnification)
	}

	return row.Filename
}
