package portfolio

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const maxChartBars = 25

// RenderValueChart draws Valor_Actual per ticker as a PNG bar chart.
// Only the first 25 positions are drawn.
func RenderValueChart(p *Portfolio) ([]byte, error) {
	if p == nil || len(p.Positions) == 0 {
		return nil, fmt.Errorf("no positions to chart")
	}

	positions := p.Positions
	if len(positions) > maxChartBars {
		positions = positions[:maxChartBars]
	}

	maxValue := 0.0
	bars := make([]chart.Value, 0, len(positions))
	for _, pos := range positions {
		v := pos.CurrentValue.InexactFloat64()
		if v < 0 {
			v = 0
		}
		if v > maxValue {
			maxValue = v
		}
		bars = append(bars, chart.Value{
			Label: pos.Ticker,
			Value: v,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("667eea"),
				StrokeColor: drawing.ColorFromHex("764ba2"),
				StrokeWidth: 1,
			},
		})
	}
	if maxValue == 0 {
		maxValue = 1
	}

	width := 120 + len(bars)*60
	if width < 600 {
		width = 600
	}

	graph := chart.BarChart{
		Title:    "Valor Actual por Ticker",
		Width:    width,
		Height:   400,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
