package imagestore

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Thumbnail decodes raw and scales it down to width pixels wide, keeping the
// aspect ratio, and returns it as a JPEG. Images that are already narrow
// enough are re-encoded at their own size.
func Thumbnail(name string, raw []byte, width int) ([]byte, error) {
	if width < 1 {
		return nil, fmt.Errorf("thumbnail width must be positive, got %d", width)
	}

	img, err := Decode(name, raw)
	if err != nil {
		return nil, err
	}

	return encodeThumbnail(img, width)
}

func encodeThumbnail(img image.Image, width int) ([]byte, error) {
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
