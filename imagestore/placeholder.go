package imagestore

import (
	"bytes"

	"github.com/fogleman/gg"
)

// Placeholder draws a width x height PNG that stands in for an image that
// could not be found. label, usually the filename, is printed under the
// warning.
func Placeholder(width, height int, label string) ([]byte, error) {
	if width < 64 {
		width = 64
	}
	if height < 48 {
		height = 48
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(0.98, 0.94, 0.84)
	dc.Clear()

	dc.SetRGB(0.85, 0.6, 0.1)
	dc.SetLineWidth(4)
	dc.DrawRectangle(2, 2, float64(width-4), float64(height-4))
	dc.Stroke()

	// The default face is the 7x13 bitmap font, so no font file is needed.
	dc.SetRGB(0.45, 0.3, 0.05)
	dc.DrawStringAnchored("Image not available", float64(width)/2, float64(height)/2-10, 0.5, 0.5)
	dc.DrawStringAnchored(truncateLabel(label, (width-16)/7), float64(width)/2, float64(height)/2+10, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func truncateLabel(label string, maxChars int) string {
	runes := []rune(label)
	if maxChars < 4 || len(runes) <= maxChars {
		return label
	}

	return string(runes[:maxChars-3]) + "..."
}
