package microview

import (
	"bytes"
	"io"
	"strings"

	"github.com/csimplestring/go-csv/detector"
)

// Delimiters that a metadata table is allowed to use. Other symbols that
// happen to recur on every line (underscores in filenames, for example) are
// never treated as a delimiter.
const acceptedDelimiters = ",\t;|"

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file.
func DetermineDelimiter(r io.Reader) rune {
	if delim, ok := detectDelimiter(r); ok {
		return delim
	}

	return ','
}

func detectDelimiter(r io.Reader) (rune, bool) {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	for _, v := range delimiters {
		if len(v) == 1 && strings.ContainsRune(acceptedDelimiters, rune(v[0])) {
			return rune(v[0]), true
		}
	}

	return 0, false
}

// DetermineDelimiterBytes runs DetermineDelimiter over the first lines of an
// in-memory file without consuming it.
func DetermineDelimiterBytes(content []byte) rune {
	preview := content
	if len(preview) > 64*1024 {
		preview = preview[:64*1024]
		if idx := bytes.LastIndexByte(preview, '\n'); idx > 0 {
			preview = preview[:idx+1]
		}
	}

	// A header-only or single-row file gives the detector nothing to compare,
	// so fall back to counting candidates on the first line.
	if bytes.Count(preview, []byte{'\n'}) < 2 {
		return delimiterFromHeader(preview)
	}

	if delim, ok := detectDelimiter(bytes.NewReader(preview)); ok {
		return delim
	}

	firstLine := preview
	if idx := bytes.IndexByte(preview, '\n'); idx > 0 {
		firstLine = preview[:idx]
	}

	return delimiterFromHeader(firstLine)
}

func delimiterFromHeader(line []byte) rune {
	best, bestCount := ',', 0
	for _, c := range acceptedDelimiters {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}

	return best
}
