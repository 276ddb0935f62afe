package gallery

import (
	"fmt"
	"strings"
	"testing"

	"github.com/carbocation/microview/filter"
	"github.com/carbocation/microview/metadata"
)

type missingSet map[string]bool

func (m missingSet) Exists(row metadata.Row) error {
	if m[row.Filename] {
		return fmt.Errorf("image not found: /srv/microscopy/images/%s", row.Filename)
	}
	return nil
}

func testTable() *metadata.Table {
	return metadata.NewTable("test.csv", []metadata.Row{
		{Filename: "a.tif", Method: "PLM", Location: "BIU", SampleID: "s1", Mode: "CP", Magnification: "10x"},
		{Filename: "b.tif", Method: "PCM", Location: "BIU", SampleID: "s1", Mode: "NA", Magnification: "20x"},
		{Filename: "c.tif", Method: "PLM", Location: "nCAT", SampleID: "s2", Mode: "WP", Magnification: "10x"},
	})
}

func TestBuildMissingImageOmitsOnlyThatTile(t *testing.T) {
	q := filter.Query{Selection: filter.Selection{}.Set(metadata.FieldSample, "s1")}
	page := Build(testTable(), Options{Query: q}, missingSet{"b.tif": true})

	if page.Matched != 2 {
		t.Fatalf("expected 2 matched rows, got %d", page.Matched)
	}
	if page.Missing != 1 {
		t.Fatalf("expected 1 missing image, got %d", page.Missing)
	}
	if len(page.Warnings) != 1 || !strings.Contains(page.Warnings[0], "b.tif") {
		t.Errorf("unexpected warnings: %v", page.Warnings)
	}
	for _, w := range page.Warnings {
		if strings.Contains(w, "/srv/microscopy") {
			t.Errorf("warning leaks the image location: %s", w)
		}
	}

	tiles := page.Sections[0].Tiles
	if len(tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %d", len(tiles))
	}
	if tiles[0].Missing || tiles[0].Row.Filename != "a.tif" {
		t.Errorf("a.tif should render normally: %+v", tiles[0])
	}
	if !tiles[1].Missing || tiles[1].Warning == "" {
		t.Errorf("b.tif should be a warning tile: %+v", tiles[1])
	}
	if tiles[1].Err == nil || !strings.Contains(tiles[1].Err.Error(), "/srv/microscopy/images/b.tif") {
		t.Errorf("the full error should be kept for the log: %v", tiles[1].Err)
	}
}

func TestBuildNoMatches(t *testing.T) {
	q := filter.Query{Selection: filter.Selection{}.Set(metadata.FieldMethod, "EHD")}
	page := Build(testTable(), Options{Query: q}, missingSet{})

	if page.Matched != 0 || len(page.Rows()) != 0 {
		t.Errorf("expected no rows, got %d", page.Matched)
	}
	if len(page.Warnings) == 0 {
		t.Error("expected a no-match warning")
	}
	if page.Total != 3 {
		t.Errorf("total should count the whole table, got %d", page.Total)
	}
	if len(page.Facets[metadata.FieldMethod]) != 2 {
		t.Errorf("facets should come from the whole table: %v", page.Facets[metadata.FieldMethod])
	}
}

func TestBuildSampleView(t *testing.T) {
	page := Build(testTable(), Options{View: ViewSample, Focus: "not-a-sample"}, missingSet{})

	if page.Focus != "s1" {
		t.Errorf("unknown focus should fall back to the first sample, got %q", page.Focus)
	}
	if page.GroupBy != metadata.FieldMethod {
		t.Errorf("sample view should group by method, got %q", page.GroupBy)
	}
	if len(page.Sections) != 2 {
		t.Fatalf("expected one section per method, got %d", len(page.Sections))
	}
	if page.Sections[0].Title != "Method: PCM" || page.Sections[1].Title != "Method: PLM" {
		t.Errorf("unexpected section titles %q, %q", page.Sections[0].Title, page.Sections[1].Title)
	}
	if !strings.Contains(page.Title, "s1") {
		t.Errorf("title should name the focused sample: %q", page.Title)
	}
}

func TestBuildMethodView(t *testing.T) {
	page := Build(testTable(), Options{View: ViewMethod, Focus: "PLM"}, missingSet{})

	if page.Matched != 2 {
		t.Fatalf("expected 2 PLM rows, got %d", page.Matched)
	}
	if len(page.Sections) != 2 || page.Sections[0].Title != "Sample: s1" {
		t.Errorf("unexpected sections: %+v", page.Sections)
	}
}

func TestOptionsNormalized(t *testing.T) {
	for _, tc := range []struct{ in, want int }{{0, 2}, {-3, 2}, {1, 1}, {8, 8}, {20, 8}} {
		if got := (Options{PerRow: tc.in}).Normalized().PerRow; got != tc.want {
			t.Errorf("PerRow %d: got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCaption(t *testing.T) {
	row := testTable().Rows()[0]

	cases := map[CaptionStyle]string{
		CaptionFilename: "a.tif",
		CaptionShort:    "PLM | s1 | 10x",
		CaptionFull:     "Method: PLM • Location: BIU • Sample: s1 • Mode: CP • Mag: 10x",
		CaptionNone:     "",
	}
	for style, want := range cases {
		if got := Caption(row, style); got != want {
			t.Errorf("%s: got %q, want %q", style, got, want)
		}
	}

	if ParseCaptionStyle("bogus") != CaptionFilename {
		t.Error("unknown caption style should fall back to filename")
	}
	if ParseView("METHOD") != ViewMethod {
		t.Error("view parsing should ignore case")
	}
}

func TestBuildKeepsTableIndex(t *testing.T) {
	page := Build(testTable(), Options{View: ViewSample, Focus: "s2"}, missingSet{})

	rows := page.Rows()
	if len(rows) != 1 || rows[0].Index != 2 {
		t.Errorf("tiles must keep their table index for image links, got %+v", rows)
	}
}
