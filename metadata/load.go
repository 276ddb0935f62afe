package metadata

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/storage"
	"github.com/carbocation/microview"
	"github.com/extrame/xls"
	"github.com/gocarina/gocsv"
	"golang.org/x/net/html/charset"
	"gopkg.in/guregu/null.v3"
)

// RequiredColumns must be present in every metadata table.
var RequiredColumns = []string{"method", "location", "sample", "mode", "filename"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type logger interface {
	Printf(format string, v ...interface{})
}

// Options control how a metadata table is read.
type Options struct {
	// Strict rejects rows whose method, location or mode is not one of the
	// known values, and rows without a filename. When false, unknown values
	// are kept as-is and reported once each through Log.
	Strict bool

	// Encoding forces a character set label such as "windows-1252". When
	// empty, UTF-8 is assumed unless the content is not valid UTF-8, in which
	// case the encoding is guessed.
	Encoding string

	// Client is needed only for gs:// paths.
	Client *storage.Client

	Log logger
}

func (o Options) logf(format string, v ...interface{}) {
	if o.Log == nil {
		log.Printf(format, v...)
		return
	}
	o.Log.Printf(format, v...)
}

// record mirrors the columns of metadata.csv as written by makemetadata.
type record struct {
	Filename           string `csv:"filename"`
	Method             string `csv:"method"`
	Location           string `csv:"location"`
	Sample             string `csv:"sample"`
	Mode               string `csv:"mode"`
	Magnification      string `csv:"magnification"`
	MagnificationValue string `csv:"magnification_value"`
	Ext                string `csv:"ext"`
	RelPath            string `csv:"rel_path"`
}

// Load reads the metadata table at path, which may be local or a gs:// URL,
// optionally compressed. Any failure is reported as a *LoadError.
func Load(path string, opts Options) (*Table, error) {
	content, err := microview.ReadAllFromPath(path, opts.Client)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return Read(bytes.NewReader(content), path, opts)
}

// Read parses a metadata table from r. name is used for error messages and to
// recognize .xls spreadsheets by their extension.
func Read(r io.Reader, name string, opts Options) (*Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}

	content, dt, err := microview.MaybeDecompress(content)
	if err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("decompressing %s data: %w", dt, err)}
	}

	var recs [][]string
	if isSpreadsheet(name, content) {
		recs, err = readSpreadsheet(content, opts.Encoding)
	} else {
		recs, err = readDelimited(content, opts.Encoding)
	}
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}

	if len(recs) == 0 {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("file is empty")}
	}

	header := normalizeHeader(recs[0])
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &LoadError{Path: name, MissingColumns: missing}
	}
	recs[0] = header

	records, err := unmarshalRecords(recs)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}

	rows := make([]Row, 0, len(records))
	unknown := make(map[string]struct{})
	for i, rec := range records {
		// Line numbers count the header
		line := i + 2

		row, err := rec.toRow()
		if err != nil {
			if opts.Strict {
				return nil, &LoadError{Path: name, Line: line, Err: err}
			}
			opts.logf("metadata: skipping line %d of %s: %v\n", line, name, err)
			continue
		}

		for _, problem := range row.enumProblems() {
			if opts.Strict {
				return nil, &LoadError{Path: name, Line: line, Err: fmt.Errorf("%s", problem)}
			}
			if _, seen := unknown[problem]; !seen {
				unknown[problem] = struct{}{}
				opts.logf("metadata: %s: %s (first seen on line %d); keeping it\n", name, problem, line)
			}
		}

		rows = append(rows, row)
	}

	return NewTable(name, rows), nil
}

func (rec record) toRow() (Row, error) {
	filename := strings.TrimSpace(rec.Filename)
	if filename == "" {
		return Row{}, fmt.Errorf("row has no filename")
	}

	relPath := strings.ReplaceAll(strings.TrimSpace(rec.RelPath), `\`, "/")

	ext := strings.ToLower(strings.TrimSpace(rec.Ext))
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}

	magnification := strings.TrimSpace(rec.Magnification)
	var magValue null.Float
	if v, err := strconv.ParseFloat(strings.TrimSpace(rec.MagnificationValue), 64); err == nil {
		magValue = null.FloatFrom(v)
	} else {
		magValue = ParseMagnification(magnification)
	}

	return Row{
		SampleID:           strings.TrimSpace(rec.Sample),
		Method:             Method(strings.TrimSpace(rec.Method)),
		Location:           Location(strings.TrimSpace(rec.Location)),
		Mode:               Mode(strings.TrimSpace(rec.Mode)),
		Filename:           filename,
		Magnification:      magnification,
		MagnificationValue: magValue,
		Ext:                ext,
		RelPath:            relPath,
	}, nil
}

// enumProblems describes every enumerated field whose value is not a known
// member.
func (r Row) enumProblems() []string {
	var out []string
	if !r.Method.Valid() {
		out = append(out, fmt.Sprintf("unknown method %q", r.Method))
	}
	if !r.Location.Valid() {
		out = append(out, fmt.Sprintf("unknown location %q", r.Location))
	}
	if !r.Mode.Valid() {
		out = append(out, fmt.Sprintf("unknown mode %q", r.Mode))
	}
	return out
}

func normalizeHeader(cols []string) []string {
	out := make([]string, len(cols))
	hasSample := false
	for i, col := range cols {
		out[i] = strings.ToLower(strings.TrimSpace(col))
		if out[i] == "sample" {
			hasSample = true
		}
	}

	if !hasSample {
		for i, col := range out {
			if col == "sample_id" {
				out[i] = "sample"
				break
			}
		}
	}

	return out
}

func missingColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, col := range header {
		present[col] = struct{}{}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}

	return missing
}

// unmarshalRecords hands the normalized records to gocsv, which maps columns
// onto the record struct by header name.
func unmarshalRecords(recs [][]string) ([]*record, error) {
	records := []*record{}
	if len(recs) < 2 {
		return records, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(recs); err != nil {
		return nil, err
	}

	if err := gocsv.UnmarshalCSV(csv.NewReader(&buf), &records); err != nil {
		return nil, err
	}

	return records, nil
}

func readDelimited(content []byte, encoding string) ([][]string, error) {
	text, err := decodeText(content, encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = microview.DetermineDelimiterBytes(text)
	cr.LazyQuotes = true

	return cr.ReadAll()
}

// decodeText converts content to UTF-8.
func decodeText(content []byte, encoding string) ([]byte, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	if encoding != "" {
		rdr, err := charset.NewReaderLabel(encoding, bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		return io.ReadAll(rdr)
	}

	if utf8.Valid(content) {
		return content, nil
	}

	rdr, err := charset.NewReader(bytes.NewReader(content), "text/csv")
	if err != nil {
		return nil, err
	}

	return io.ReadAll(rdr)
}

// Legacy Excel files are OLE2 compound documents.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

func isSpreadsheet(name string, content []byte) bool {
	return bytes.HasPrefix(content, oleSignature) || strings.EqualFold(filepath.Ext(name), ".xls")
}

// readSpreadsheet reads the first sheet of a .xls workbook.
func readSpreadsheet(content []byte, encoding string) ([][]string, error) {
	if encoding == "" {
		encoding = "utf-8"
	}

	workbook, err := xls.OpenReader(bytes.NewReader(content), encoding)
	if err != nil {
		return nil, err
	}
	if workbook == nil {
		return nil, fmt.Errorf("file has no Workbook stream")
	}

	if workbook.NumSheets() < 1 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("sheet 0 was nil")
	}

	output := make([][]string, 0, int(sheet.MaxRow)+1)
	width := 0
	for rowID := 0; rowID <= int(sheet.MaxRow); rowID++ {
		row := sheetRow(sheet, rowID)
		if row == nil {
			continue
		}

		// LastCol is one past the last populated column
		cols := make([]string, 0, row.LastCol())
		for colID := 0; colID < row.LastCol(); colID++ {
			cols = append(cols, row.Col(colID))
		}

		if rowID == 0 {
			width = len(cols)
		}

		// Spreadsheets omit trailing empty cells; pad to the header width so
		// every record has the same shape.
		for len(cols) < width {
			cols = append(cols, "")
		}
		if len(cols) > width {
			cols = cols[:width]
		}

		output = append(output, cols)
	}

	return output, nil
}

// sheetRow returns nil for blank rows, which the xls package does not store and
// panics on.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()

	return sheet.Row(i)
}

// Exists reports whether a local metadata file is present. It is used to pick
// default paths and does not look in Google Storage.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
