package microview

import "io"

// ReaderAtCloser is satisfied both by *os.File and by GSReaderAtCloser, so
// callers can treat local and bucket paths alike.
type ReaderAtCloser interface {
	io.Reader
	io.ReaderAt
	io.Closer
}
