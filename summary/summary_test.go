package summary

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/carbocation/microview/metadata"
	"gopkg.in/guregu/null.v3"
)

func testRows() []metadata.Row {
	return []metadata.Row{
		{Filename: "a.tif", Method: "PLM", SampleID: "s1", MagnificationValue: null.FloatFrom(10)},
		{Filename: "b.tif", Method: "PCM", SampleID: "s1", MagnificationValue: null.FloatFrom(20)},
		{Filename: "c.tif", Method: "PLM", SampleID: "s2", MagnificationValue: null.FloatFrom(30)},
		{Filename: "d.tif", Method: "PLM", SampleID: "s2"},
	}
}

func TestCounts(t *testing.T) {
	got := Counts(testRows(), metadata.FieldMethod)
	want := []Count{{"PCM", 1}, {"PLM", 3}}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("count %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(testRows())
	if err != nil {
		t.Fatal(err)
	}

	if s.Rows != 4 {
		t.Errorf("expected 4 rows, got %d", s.Rows)
	}
	if len(s.Fields) != len(metadata.Fields) {
		t.Errorf("expected counts for every field, got %d", len(s.Fields))
	}

	mag := s.Magnification
	if mag.N != 3 || mag.Unparsed != 1 {
		t.Errorf("expected 3 parsed and 1 unparsed, got %d and %d", mag.N, mag.Unparsed)
	}
	if mag.Mean != 20 || mag.Median != 20 || mag.Min != 10 || mag.Max != 30 {
		t.Errorf("unexpected stats %+v", mag)
	}
	if math.Abs(mag.StdDev-8.165) > 0.001 {
		t.Errorf("unexpected standard deviation %f", mag.StdDev)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s, err := Summarize(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Rows != 0 || s.Magnification.N != 0 {
		t.Errorf("expected an empty summary, got %+v", s)
	}
}

func TestBarChart(t *testing.T) {
	var buf bytes.Buffer
	if err := BarChart(&buf, "Method", Counts(testRows(), metadata.FieldMethod)); err != nil {
		t.Fatal(err)
	}

	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("chart is not a PNG: %v", err)
	}

	if err := BarChart(&buf, "Nothing", nil); err == nil {
		t.Error("expected an error for an empty chart")
	}
}
