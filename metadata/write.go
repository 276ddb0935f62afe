package metadata

import (
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes rows in the metadata.csv layout that Load reads back.
func WriteCSV(w io.Writer, rows []Row) error {
	records := make([]*record, 0, len(rows))
	for _, row := range rows {
		rec := &record{
			Filename:      row.Filename,
			Method:        string(row.Method),
			Location:      string(row.Location),
			Sample:        row.SampleID,
			Mode:          string(row.Mode),
			Magnification: row.Magnification,
			Ext:           row.Ext,
			RelPath:       row.Path(),
		}
		if row.MagnificationValue.Valid {
			rec.MagnificationValue = strconv.FormatFloat(row.MagnificationValue.Float64, 'f', -1, 64)
		}

		records = append(records, rec)
	}

	return gocsv.Marshal(records, w)
}
