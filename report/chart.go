package report

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/maastricht-university/emotion-session/orchestrator"
)

const (
	chartWidth  = 1024
	chartHeight = 512
	plotWidth   = 800 // room left for bars once axes are drawn
	maxBarWidth = 60
	barFill     = "8884d8"
)

// BarChart draws one bar per label, in table order.
type BarChart struct {
	Title string
}

func (b BarChart) RenderChart(t orchestrator.FrequencyTable) ([]byte, error) {
	if len(t) == 0 {
		return nil, ErrNoChart
	}

	style := chart.Style{
		FillColor:   drawing.ColorFromHex(barFill),
		StrokeColor: drawing.ColorFromHex(barFill),
	}
	maxCount := 0
	bars := make([]chart.Value, 0, len(t))
	for _, e := range t {
		bars = append(bars, chart.Value{Label: e.Label, Value: float64(e.Count), Style: style})
		if e.Count > maxCount {
			maxCount = e.Count
		}
	}

	width := maxBarWidth
	if w := plotWidth / (2 * len(t)); w < width {
		width = w
	}
	if width < 4 {
		width = 4
	}

	graph := chart.BarChart{
		Title:      b.Title,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   width,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount + 1)},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
