package metadata

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"
)

// DefaultExtensions are the image types picked up when building a table from
// a folder listing.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".gif", ".webp", ".dcm"}

var magnificationPattern = regexp.MustCompile(`^\s*([0-9]+(\.[0-9]+)?)\s*[xX]?\s*$`)

var (
	digitsPattern             = regexp.MustCompile(`^[0-9]+$`)
	wholeMagnificationPattern = regexp.MustCompile(`^[0-9]+[xX]$`)
)

// ParseMagnification extracts the numeric factor from text such as "10x" or
// "2_5x" (2.5). Anything else yields a null value.
func ParseMagnification(text string) null.Float {
	m := magnificationPattern.FindStringSubmatch(strings.ReplaceAll(text, "_", "."))
	if m == nil {
		return null.Float{}
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return null.Float{}
	}

	return null.FloatFrom(v)
}

// ParseFilename derives a row from a file named
// METHOD_LOCATION_SAMPLE_MODE_MAGNIFICATION.ext, e.g. PCM_BIU_glassLube_NA_10x.jpg.
// The sample may itself contain underscores. The last two tokens are the mode
// and magnification, except that a magnification such as 2_5x spans two. name may include a directory, which becomes the
// row's RelPath.
func ParseFilename(name string) (Row, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	base := path.Base(name)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	parts := strings.Split(stem, "_")
	if len(parts) < 5 {
		return Row{}, fmt.Errorf("expected at least 5 tokens separated by '_' but got %d: %s", len(parts), stem)
	}

	// A decimal magnification is written with '_' for the point, as in 2_5x.
	// The leading digits are folded back in only when enough tokens remain
	// for the other fields.
	n := len(parts)
	magnification := parts[n-1]
	if n >= 6 && digitsPattern.MatchString(parts[n-2]) && wholeMagnificationPattern.MatchString(parts[n-1]) {
		magnification = parts[n-2] + "_" + parts[n-1]
		parts = append(parts[:n-2:n-2], magnification)
		n = len(parts)
	}

	return Row{
		Method:             Method(parts[0]),
		Location:           Location(parts[1]),
		SampleID:           strings.Join(parts[2:n-2], "_"),
		Mode:               Mode(parts[n-2]),
		Magnification:      magnification,
		MagnificationValue: ParseMagnification(magnification),
		Filename:           base,
		Ext:                strings.ToLower(ext),
		RelPath:            name,
	}, nil
}

// SkippedFile records a file that FromFilenames could not parse.
type SkippedFile struct {
	Name string
	Err  error
}

// FromFilenames parses every name with one of the given extensions (matched
// case-insensitively; DefaultExtensions when empty) into a row. Names are
// processed in sorted order. Names that do not follow the naming convention
// are returned in skipped.
func FromFilenames(names []string, exts []string) (rows []Row, skipped []SkippedFile) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	accepted := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		accepted[ext] = struct{}{}
	}

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	for _, name := range sorted {
		if _, ok := accepted[strings.ToLower(path.Ext(name))]; !ok {
			continue
		}

		row, err := ParseFilename(name)
		if err != nil {
			skipped = append(skipped, SkippedFile{Name: name, Err: err})
			continue
		}

		rows = append(rows, row)
	}

	return rows, skipped
}
