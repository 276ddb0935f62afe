package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/carbocation/microview/imagestore"
	"github.com/carbocation/microview/metadata"
)

const (
	minThumbWidth = 16
	maxThumbWidth = 2048
)

// Image serves the row's image in a format the browser can display.
func (h *handler) Image(w http.ResponseWriter, r *http.Request) {
	row, code, err := h.rowFromRequest(r)
	if err != nil {
		HTTPError(h, w, r, err, code)
		return
	}

	raw, err := h.Global.images.Resolve(row)
	if err != nil {
		h.placeholder(w, r, row, h.Global.ThumbWidth, err)
		return
	}

	etag := imagestore.ETag(raw)
	if notModified(w, r, etag) {
		return
	}

	contentType, body, err := imagestore.Browser(row.Filename, raw)
	if err != nil {
		h.placeholder(w, r, row, h.Global.ThumbWidth, err)
		return
	}

	setCacheHeaders(w, etag)
	w.Header().Set("Content-Type", contentType)
	w.Write(body)
}

// Thumb serves a JPEG thumbnail of the row's image. The width comes from ?w=
// and defaults to the --thumb-width flag.
func (h *handler) Thumb(w http.ResponseWriter, r *http.Request) {
	row, code, err := h.rowFromRequest(r)
	if err != nil {
		HTTPError(h, w, r, err, code)
		return
	}

	width := clamp(intParam(r.URL.Query(), "w", h.Global.ThumbWidth), minThumbWidth, maxThumbWidth)

	raw, err := h.Global.images.Resolve(row)
	if err != nil {
		h.placeholder(w, r, row, width, err)
		return
	}

	etag := fmt.Sprintf(`"%s-w%d"`, strings.Trim(imagestore.ETag(raw), `"`), width)
	if notModified(w, r, etag) {
		return
	}

	thumb, err := imagestore.Thumbnail(row.Filename, raw, width)
	if err != nil {
		h.placeholder(w, r, row, width, err)
		return
	}

	setCacheHeaders(w, etag)
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(thumb)
}

// notModified answers 304 when the client already holds this version.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	if match := r.Header.Get("If-None-Match"); match == "" || match != etag {
		return false
	}

	setCacheHeaders(w, etag)
	w.WriteHeader(http.StatusNotModified)
	return true
}

// setCacheHeaders is only called once the image is known to be servable, so
// a placeholder never carries the ETag of the file it stands in for.
func setCacheHeaders(w http.ResponseWriter, etag string) {
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=3600")
}

// placeholder answers with a warning tile in place of an image. Missing files
// are a 404; anything else that kept the image from being shown is a 500.
func (h *handler) placeholder(w http.ResponseWriter, r *http.Request, row metadata.Row, width int, cause error) {
	code := http.StatusInternalServerError
	label := "Cannot display: " + row.Filename
	if imagestore.IsNotFound(cause) {
		code = http.StatusNotFound
		label = "Could not open: " + row.Filename
	}

	h.log.Println(r.Host, r.URL.Path, ":", code, cause)

	tile, err := imagestore.Placeholder(width, width*3/4, label)
	if err != nil {
		HTTPError(h, w, r, fmt.Errorf("%v (and drawing a placeholder failed: %v)", cause, err), code)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	w.Write(tile)
}
