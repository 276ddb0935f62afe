package metadata

import (
	"fmt"
	"strings"
)

// LoadError is returned when a metadata table cannot be read or does not have
// the expected shape.
type LoadError struct {
	Path           string
	MissingColumns []string
	Line           int // 1-based line of the offending record, if known
	Err            error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "metadata: cannot load %s", e.Path)

	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}

	if len(e.MissingColumns) > 0 {
		fmt.Fprintf(&b, ": missing required columns [%s]", strings.Join(e.MissingColumns, ", "))
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
