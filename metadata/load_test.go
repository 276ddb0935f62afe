package metadata

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type captureLog struct {
	lines []string
}

func (c *captureLog) Printf(format string, v ...interface{}) {
	c.lines = append(c.lines, fmt.Sprintf(format, v...))
}

const scenarioCSV = `filename,method,location,sample,mode,magnification,magnification_value,ext,rel_path
a.png,PLM,BIU,S1,CP,10x,10,.png,a.png
b.png,PCM,nCAT,S2,Null,5x,,.png,sub\b.png
`

func TestReadScenario(t *testing.T) {
	table, err := Read(strings.NewReader(scenarioCSV), "metadata.csv", Options{})
	if err != nil {
		t.Fatal(err)
	}

	if table.Len() != 2 {
		t.Fatalf("Got %d rows, expected 2", table.Len())
	}

	first, _ := table.Row(0)
	if first.Method != MethodPLM || first.Location != LocationBIU || first.SampleID != "S1" || first.Mode != ModeCP || first.Filename != "a.png" {
		t.Errorf("Unexpected first row %s", first)
	}
	if !first.MagnificationValue.Valid || first.MagnificationValue.Float64 != 10 {
		t.Errorf("Expected magnification value 10, got %v", first.MagnificationValue)
	}

	second, _ := table.Row(1)
	if second.Index != 1 {
		t.Errorf("Expected index 1, got %d", second.Index)
	}
	if second.Mode != ModeNull {
		t.Errorf("Expected the literal mode Null to survive, got %q", second.Mode)
	}
	if second.Path() != "sub/b.png" {
		t.Errorf("Expected backslashes to be normalized, got %q", second.Path())
	}
	if !second.MagnificationValue.Valid || second.MagnificationValue.Float64 != 5 {
		t.Errorf("Expected the magnification value to be derived from 5x, got %v", second.MagnificationValue)
	}
}

func TestReadMissingColumns(t *testing.T) {
	input := "filename,method,sample\na.png,PLM,S1\n"

	_, err := Read(strings.NewReader(input), "bad.csv", Options{})

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected a *LoadError, got %v", err)
	}

	if got := strings.Join(loadErr.MissingColumns, ","); got != "location,mode" {
		t.Errorf("Got missing columns %q, expected location,mode", got)
	}
}

func TestReadEmpty(t *testing.T) {
	var loadErr *LoadError
	if _, err := Read(strings.NewReader(""), "empty.csv", Options{}); !errors.As(err, &loadErr) {
		t.Errorf("Expected a *LoadError for an empty file, got %v", err)
	}
}

func TestReadRaggedRow(t *testing.T) {
	input := "filename,method,location,sample,mode\na.png,PLM,BIU,S1\n"

	var loadErr *LoadError
	if _, err := Read(strings.NewReader(input), "ragged.csv", Options{}); !errors.As(err, &loadErr) {
		t.Errorf("Expected a *LoadError for a ragged row, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Options{})

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected a *LoadError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected the cause to be fs.ErrNotExist, got %v", loadErr.Err)
	}
}

func TestLoadHeaderVariants(t *testing.T) {
	input := " Filename \tMETHOD\tLocation\tSample_ID\tMode\nx.tif\tEHD\tnC2\tglass_lube\tDIC\n"

	path := filepath.Join(t.TempDir(), "metadata.tsv")
	if err := os.WriteFile(path, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path, Options{})
	if err != nil {
		t.Fatal(err)
	}

	row, ok := table.Row(0)
	if !ok {
		t.Fatal("Expected one row")
	}
	if row.SampleID != "glass_lube" || row.Method != MethodEHD || row.Ext != ".tif" {
		t.Errorf("Unexpected row %+v", row)
	}
	if row.MagnificationValue.Valid {
		t.Errorf("Expected a null magnification value, got %v", row.MagnificationValue)
	}
}

func TestReadGzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte(scenarioCSV))
	gw.Close()

	table, err := Read(&buf, "metadata.csv.gz", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Errorf("Got %d rows, expected 2", table.Len())
	}
}

func TestReadLegacyEncoding(t *testing.T) {
	// "Glasé" in windows-1252
	input := []byte("filename,method,location,sample,mode\na.png,PLM,BIU,Glas\xe9,CP\n")

	table, err := Read(bytes.NewReader(input), "metadata.csv", Options{})
	if err != nil {
		t.Fatal(err)
	}
	row, _ := table.Row(0)
	if row.SampleID != "Glasé" {
		t.Errorf("Got sample %q, expected Glasé", row.SampleID)
	}

	table, err = Read(bytes.NewReader(input), "metadata.csv", Options{Encoding: "latin1"})
	if err != nil {
		t.Fatal(err)
	}
	row, _ = table.Row(0)
	if row.SampleID != "Glasé" {
		t.Errorf("Got sample %q with a forced encoding, expected Glasé", row.SampleID)
	}
}

func TestReadUTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte(scenarioCSV)...)

	if _, err := Read(bytes.NewReader(input), "metadata.csv", Options{}); err != nil {
		t.Errorf("Expected the BOM to be ignored, got %v", err)
	}
}

func TestReadEnumValidation(t *testing.T) {
	input := "filename,method,location,sample,mode\na.png,SEM,BIU,S1,CP\nb.png,SEM,BIU,S2,CP\nc.png,PLM,BIU,S3,CP\n"

	logs := &captureLog{}
	table, err := Read(strings.NewReader(input), "lenient.csv", Options{Log: logs})
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 3 {
		t.Errorf("Lenient mode should keep all rows, got %d", table.Len())
	}
	if len(logs.lines) != 1 {
		t.Errorf("Expected one warning for the unknown method, got %d: %v", len(logs.lines), logs.lines)
	}

	_, err = Read(strings.NewReader(input), "strict.csv", Options{Strict: true})
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Strict mode should fail with a *LoadError, got %v", err)
	}
	if loadErr.Line != 2 {
		t.Errorf("Expected the error on line 2, got %d", loadErr.Line)
	}
}

func TestReadMissingFilename(t *testing.T) {
	input := "filename,method,location,sample,mode\n,PLM,BIU,S1,CP\nb.png,PLM,BIU,S2,CP\n"

	table, err := Read(strings.NewReader(input), "gaps.csv", Options{Log: &captureLog{}})
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 1 {
		t.Errorf("Expected the row without a filename to be skipped, got %d rows", table.Len())
	}

	if _, err := Read(strings.NewReader(input), "gaps.csv", Options{Strict: true}); err == nil {
		t.Errorf("Expected strict mode to reject a row without a filename")
	}
}

func TestTableIsReadOnly(t *testing.T) {
	table, err := Read(strings.NewReader(scenarioCSV), "metadata.csv", Options{})
	if err != nil {
		t.Fatal(err)
	}

	rows := table.Rows()
	rows[0].Method = MethodEHD

	if row, _ := table.Row(0); row.Method != MethodPLM {
		t.Errorf("Modifying the result of Rows() changed the table")
	}

	if _, ok := table.Row(5); ok {
		t.Errorf("Expected an out of range row to be reported")
	}
}

func TestWriteCSVReadsBack(t *testing.T) {
	rows, skipped := FromFilenames([]string{"PCM_BIU_glassLube_NA_10x.jpg", "PLM_nCAT_8CB_face_up_CP_2_5x.png"}, nil)
	if len(skipped) != 0 {
		t.Fatalf("Unexpected skipped files %v", skipped)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatal(err)
	}

	table, err := Read(&buf, "metadata.csv", Options{Strict: true})
	if err != nil {
		t.Fatal(err)
	}

	got := table.Rows()
	if len(got) != 2 {
		t.Fatalf("Got %d rows, expected 2", len(got))
	}
	if got[1].SampleID != "8CB_face_up" || got[1].MagnificationValue.Float64 != 2.5 {
		t.Errorf("Unexpected row after reading back: %+v", got[1])
	}
}

// testdata/metadata.xls holds the same layout as metadata.csv in a BIFF8
// workbook. Its last row stops before the magnification_value column.
func TestLoadSpreadsheet(t *testing.T) {
	table, err := Load(filepath.Join("testdata", "metadata.xls"), Options{Strict: true})
	if err != nil {
		t.Fatal(err)
	}

	rows := table.Rows()
	if len(rows) != 3 {
		t.Fatalf("Got %d rows, expected 3", len(rows))
	}

	if rows[0].Filename != "PLM_BIU_S1_CP_10x.png" || rows[0].Method != MethodPLM || rows[0].SampleID != "S1" || rows[0].Ext != ".png" {
		t.Errorf("Unexpected first row %+v", rows[0])
	}
	if rows[1].Location != LocationNCAT || rows[1].Mode != ModeNA || rows[1].MagnificationValue.Float64 != 2.5 {
		t.Errorf("Unexpected second row %+v", rows[1])
	}
	if rows[2].SampleID != "S3" || !rows[2].MagnificationValue.Valid || rows[2].MagnificationValue.Float64 != 40 {
		t.Errorf("Magnification value should fall back to the magnification text: %+v", rows[2])
	}
}

func TestReadSpreadsheetBySignature(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "metadata.xls"))
	if err != nil {
		t.Fatal(err)
	}

	table, err := Read(bytes.NewReader(content), "upload", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 3 {
		t.Errorf("Got %d rows, expected 3", table.Len())
	}
}

func TestReadBrokenSpreadsheet(t *testing.T) {
	content := append(append([]byte{}, oleSignature...), []byte("not really a workbook")...)

	_, err := Read(bytes.NewReader(content), "metadata.xls", Options{})
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected a *LoadError, got %v", err)
	}
}
