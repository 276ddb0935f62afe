package microview

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"google.golang.org/api/iterator"
)

const GSPrefix = "gs://"

// IsGoogleStoragePath reports whether path names a Google Storage object or
// prefix.
func IsGoogleStoragePath(path string) bool {
	return strings.HasPrefix(path, GSPrefix)
}

// SplitGoogleStoragePath splits gs://bucket/some/object into its bucket and
// object name. The object name may be empty when only a bucket is given.
func SplitGoogleStoragePath(path string) (bucket, object string, err error) {
	if !IsGoogleStoragePath(path) {
		return "", "", fmt.Errorf("%s is not a Google Storage path", path)
	}

	pathParts := strings.SplitN(strings.TrimPrefix(path, GSPrefix), "/", 2)
	if pathParts[0] == "" {
		return "", "", fmt.Errorf("No bucket found in Google Storage path %s", path)
	}
	if len(pathParts) == 1 {
		return pathParts[0], "", nil
	}

	return pathParts[0], pathParts[1], nil
}

// MaybeOpenFromGoogleStorage opens path from Google Storage if it carries the
// gs:// prefix and from the local filesystem otherwise. The returned size is
// the object or file size in bytes.
func MaybeOpenFromGoogleStorage(path string, client *storage.Client) (ReaderAtCloser, int64, error) {
	if IsGoogleStoragePath(path) {
		if client == nil {
			return nil, 0, pfx.Err(fmt.Errorf("%s: no Google Storage client was configured", path))
		}

		bucketName, pathName, err := SplitGoogleStoragePath(path)
		if err != nil {
			return nil, 0, err
		}
		if pathName == "" {
			return nil, 0, fmt.Errorf("%s names a bucket, not an object", path)
		}

		wrappedHandle := &GSReaderAtCloser{
			ObjectHandle: client.Bucket(bucketName).Object(pathName),
			Context:      context.Background(),
		}

		// Make a hard call to get the filesize. This also surfaces
		// storage.ErrObjectNotExist before any read is attempted.
		attrs, err := wrappedHandle.ObjectHandle.Attrs(wrappedHandle.Context)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}

		return wrappedHandle, attrs.Size, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	fstat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if fstat.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("%s is a directory", path)
	}

	return f, fstat.Size(), nil
}

// ReadAllFromPath is a convenience wrapper that returns the full contents of a
// local or Google Storage path.
func ReadAllFromPath(path string, client *storage.Client) ([]byte, error) {
	rdr, _, err := MaybeOpenFromGoogleStorage(path, client)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	return io.ReadAll(rdr)
}

// ListFromGoogleStorage returns the names of all objects under the gs://
// prefix, relative to that prefix.
func ListFromGoogleStorage(path string, client *storage.Client) ([]string, error) {
	if client == nil {
		return nil, pfx.Err(fmt.Errorf("%s: no Google Storage client was configured", path))
	}

	bucketName, prefix, err := SplitGoogleStoragePath(path)
	if err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	it := client.Bucket(bucketName).Objects(context.Background(), &storage.Query{Prefix: prefix})

	output := make([]string, 0)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		// Skip "directory" placeholder objects
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}

		output = append(output, strings.TrimPrefix(attrs.Name, prefix))
	}

	return output, nil
}

// GSReaderAtCloser decorates a Google Storage object handle with Read, ReadAt
// and Close.
type GSReaderAtCloser struct {
	*storage.ObjectHandle
	Context context.Context
	Reader  *storage.Reader
}

// Read satisfies io.Reader.
func (o *GSReaderAtCloser) Read(p []byte) (n int, err error) {
	if o.Reader == nil {
		o.Reader, err = o.NewReader(o.Context)
		if err != nil {
			return 0, err
		}
	}

	return o.Reader.Read(p)
}

// ReadAt satisfies io.ReaderAt. Note that this is dependent upon making p a
// buffer of the desired length to be read by NewRangeReader.
func (o *GSReaderAtCloser) ReadAt(p []byte, offset int64) (n int, err error) {
	rdr, err := o.NewRangeReader(o.Context, offset, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer rdr.Close()

	n, err = io.ReadFull(rdr, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}

	return n, err
}

// Close satisfies io.Closer.
func (o *GSReaderAtCloser) Close() error {
	if o.Reader != nil {
		return o.Reader.Close()
	}

	return nil
}
