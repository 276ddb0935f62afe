package imagestore

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"path"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Formats every browser can show without help.
var passthrough = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Browser returns raw in a form a browser can display, along with its content
// type. PNG, JPEG, GIF and WebP pass through unchanged; TIFF, BMP and DICOM are
// re-encoded as PNG.
func Browser(name string, raw []byte) (string, []byte, error) {
	ext := strings.ToLower(path.Ext(name))

	if contentType, ok := passthrough[ext]; ok {
		return contentType, raw, nil
	}

	switch ext {
	case ".tif", ".tiff", ".bmp", ".dcm":
	default:
		// Unknown extension. Trust the bytes if they look like an image.
		if contentType := http.DetectContentType(raw); strings.HasPrefix(contentType, "image/") {
			return contentType, raw, nil
		}
	}

	img, err := Decode(name, raw)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", nil, err
	}

	return "image/png", buf.Bytes(), nil
}

// Decode turns raw into an image.Image, using the file extension to spot
// DICOM files and the content itself for everything else.
func Decode(name string, raw []byte) (image.Image, error) {
	if strings.EqualFold(path.Ext(name), ".dcm") {
		return DecodeDicom(bytes.NewReader(raw), int64(len(raw)))
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	return img, nil
}
