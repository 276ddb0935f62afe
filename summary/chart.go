package summary

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	barWidth    = 40
	barSpacing  = 30
	chartHeight = 320
	minWidth    = 320
)

// BarChart renders counts as a PNG bar chart.
func BarChart(w io.Writer, title string, counts []Count) error {
	if len(counts) < 1 {
		return fmt.Errorf("no values to chart")
	}

	bars := make([]chart.Value, 0, len(counts))
	maxN := 1
	for _, c := range counts {
		label := c.Value
		if label == "" {
			label = "(blank)"
		}
		bars = append(bars, chart.Value{Label: label, Value: float64(c.N)})
		if c.N > maxN {
			maxN = c.N
		}
	}

	width := 100 + len(bars)*(barWidth+barSpacing)
	if width < minWidth {
		width = minWidth
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxN)},
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}
