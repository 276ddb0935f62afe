package imagestore

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	return img
}

func TestBrowserPassthrough(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(4, 4)); err != nil {
		t.Fatal(err)
	}

	contentType, out, err := Browser("a.PNG", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "image/png" || !bytes.Equal(out, buf.Bytes()) {
		t.Errorf("Expected PNG bytes to pass through, got %s", contentType)
	}
}

func TestBrowserConvertsBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testImage(8, 6)); err != nil {
		t.Fatal(err)
	}

	contentType, out, err := Browser("PLM_BIU_S1_CP_10x.bmp", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "image/png" {
		t.Errorf("Got content type %s, expected image/png", contentType)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("Converted image has bounds %v", img.Bounds())
	}
}

func TestBrowserRejectsGarbage(t *testing.T) {
	if _, _, err := Browser("broken.tif", []byte("not a tiff")); err == nil {
		t.Errorf("Expected an error for an undecodable TIFF")
	}
	if _, _, err := Browser("broken.dcm", []byte("not a dicom")); err == nil {
		t.Errorf("Expected an error for an undecodable DICOM")
	}
}

func TestThumbnail(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(100, 50)); err != nil {
		t.Fatal(err)
	}

	out, err := Thumbnail("a.png", buf.Bytes(), 20)
	if err != nil {
		t.Fatal(err)
	}

	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if format != "jpeg" {
		t.Errorf("Got format %s, expected jpeg", format)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Errorf("Got bounds %v, expected 20x10", img.Bounds())
	}

	if _, err := Thumbnail("a.png", buf.Bytes(), 0); err == nil {
		t.Errorf("Expected an error for a zero width")
	}
}

func TestPlaceholder(t *testing.T) {
	out, err := Placeholder(200, 150, "PLM_BIU_a_very_long_sample_name_that_will_not_fit_CP_10x.png")
	if err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 150 {
		t.Errorf("Got bounds %v", img.Bounds())
	}
}

func TestETag(t *testing.T) {
	a := ETag([]byte("a"))
	if a == "" || a != ETag([]byte("a")) {
		t.Errorf("ETag should be stable and non-empty, got %q", a)
	}
	if a == ETag([]byte("b")) {
		t.Errorf("Different content produced the same ETag")
	}
	if a[0] != '"' || a[len(a)-1] != '"' {
		t.Errorf("ETag should be quoted, got %s", a)
	}
}
