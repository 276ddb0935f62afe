// Package summary describes a set of metadata rows: how many images each facet
// value has and how magnification is distributed.
package summary

import (
	"sort"

	"github.com/carbocation/microview/metadata"
	"github.com/montanaflynn/stats"
)

// Count is the number of rows carrying one value of a column.
type Count struct {
	Value string `json:"value"`
	N     int    `json:"n"`
}

type FieldCounts struct {
	Field  metadata.Field `json:"field"`
	Counts []Count        `json:"counts"`
}

// Magnification holds statistics over the rows whose magnification could be
// parsed. Unparsed counts the rest.
type Magnification struct {
	N        int     `json:"n"`
	Unparsed int     `json:"unparsed"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	StdDev   float64 `json:"sd"`
}

type Summary struct {
	Rows          int           `json:"rows"`
	Fields        []FieldCounts `json:"fields"`
	Magnification Magnification `json:"magnification"`
}

// Counts tallies field over rows, ordered by value.
func Counts(rows []metadata.Row, field metadata.Field) []Count {
	tally := make(map[string]int)
	for _, row := range rows {
		tally[row.Value(field)]++
	}

	out := make([]Count, 0, len(tally))
	for value, n := range tally {
		out = append(out, Count{Value: value, N: n})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })

	return out
}

func Summarize(rows []metadata.Row) (Summary, error) {
	s := Summary{Rows: len(rows)}

	for _, field := range metadata.Fields {
		s.Fields = append(s.Fields, FieldCounts{Field: field, Counts: Counts(rows, field)})
	}

	mag, err := magnificationStats(rows)
	if err != nil {
		return s, err
	}
	s.Magnification = mag

	return s, nil
}

func magnificationStats(rows []metadata.Row) (Magnification, error) {
	out := Magnification{}

	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if !row.MagnificationValue.Valid {
			out.Unparsed++
			continue
		}
		values = append(values, row.MagnificationValue.Float64)
	}

	data := stats.LoadRawData(values)
	out.N = data.Len()
	if out.N < 1 {
		return out, nil
	}

	var err error
	if out.Mean, err = data.Mean(); err != nil {
		return out, err
	}
	if out.Median, err = data.Median(); err != nil {
		return out, err
	}
	if out.Min, err = data.Min(); err != nil {
		return out, err
	}
	if out.Max, err = data.Max(); err != nil {
		return out, err
	}
	if out.StdDev, err = data.StandardDeviation(); err != nil {
		return out, err
	}

	return out, nil
}
