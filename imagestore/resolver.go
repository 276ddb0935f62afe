// Package imagestore finds the image file behind a metadata row, either in a
// local folder or under a Google Storage prefix, and turns it into something a
// browser can display.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/microview"
	"github.com/carbocation/microview/metadata"
)

// NotFoundError is returned when the file a row refers to does not exist.
type NotFoundError struct {
	Filename string
	Location string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("image %s not found at %s", e.Filename, e.Location)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Resolver looks up images under a root folder or gs:// prefix. It holds no
// mutable state and is safe for concurrent use.
type Resolver struct {
	Root   string
	client *storage.Client
}

// New returns a Resolver rooted at root. client may be nil unless root is a
// gs:// path.
func New(root string, client *storage.Client) *Resolver {
	return &Resolver{
		Root:   strings.TrimSuffix(root, "/"),
		client: client,
	}
}

// Location is the full path or URL of the row's image. Relative paths are
// cleaned so that they can never climb above the root.
func (r *Resolver) Location(row metadata.Row) string {
	rel := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(row.Path(), `\`, "/")), "/")

	if microview.IsGoogleStoragePath(r.Root) {
		return r.Root + "/" + rel
	}

	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

// Resolve returns the raw bytes of the row's image, or a *NotFoundError if
// there is no such file.
func (r *Resolver) Resolve(row metadata.Row) ([]byte, error) {
	loc := r.Location(row)

	rdr, _, err := microview.MaybeOpenFromGoogleStorage(loc, r.client)
	if err != nil {
		return nil, r.classify(row, loc, err)
	}
	defer rdr.Close()

	raw, err := io.ReadAll(rdr)
	if err != nil {
		return nil, r.classify(row, loc, err)
	}

	return raw, nil
}

// Exists checks for the row's image without reading it. It returns nil, a
// *NotFoundError, or the error encountered while checking.
func (r *Resolver) Exists(row metadata.Row) error {
	loc := r.Location(row)

	if microview.IsGoogleStoragePath(loc) {
		if r.client == nil {
			return fmt.Errorf("%s: no Google Storage client was configured", loc)
		}
		bucket, object, err := microview.SplitGoogleStoragePath(loc)
		if err != nil {
			return err
		}
		_, err = r.client.Bucket(bucket).Object(object).Attrs(context.Background())
		return r.classify(row, loc, err)
	}

	fi, err := os.Stat(loc)
	if err != nil {
		return r.classify(row, loc, err)
	}
	if fi.IsDir() {
		return &NotFoundError{Filename: row.Filename, Location: loc, Err: fmt.Errorf("%s is a directory", loc)}
	}

	return nil
}

func (r *Resolver) classify(row metadata.Row, loc string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrObjectNotExist) {
		return &NotFoundError{Filename: row.Filename, Location: loc, Err: err}
	}

	return err
}

// Warning records a row whose image could not be found.
type Warning struct {
	Row metadata.Row
	Err error
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d (%s): %v", w.Row.Index, w.Row.Filename, w.Err)
}

// Verify checks that every row of table refers to an existing image. Missing
// images are reported, never fatal. A bucket root is listed once rather than
// checked per row.
func (r *Resolver) Verify(table *metadata.Table) []Warning {
	var warnings []Warning

	rows := table.Rows()

	if microview.IsGoogleStoragePath(r.Root) {
		names, err := microview.ListFromGoogleStorage(r.Root, r.client)
		if err != nil {
			for _, row := range rows {
				warnings = append(warnings, Warning{Row: row, Err: err})
			}
			return warnings
		}

		present := make(map[string]struct{}, len(names))
		for _, name := range names {
			present[name] = struct{}{}
		}

		for _, row := range rows {
			loc := r.Location(row)
			if _, ok := present[strings.TrimPrefix(loc, r.Root+"/")]; !ok {
				warnings = append(warnings, Warning{Row: row, Err: &NotFoundError{Filename: row.Filename, Location: loc}})
			}
		}

		return warnings
	}

	for _, row := range rows {
		if err := r.Exists(row); err != nil {
			warnings = append(warnings, Warning{Row: row, Err: err})
		}
	}

	return warnings
}
