package chart

import (
	"bytes"

	chart "github.com/wcharczuk/go-chart/v2"

	"immunotrial/domain/report"
	apperrors "immunotrial/internal/errors"
)

// BarChart renders one grouped aggregation as labeled bars. The y range is
// pinned to start at zero so bar heights read as counts.
func (r *Renderer) BarChart(title, yLabel string, groups []report.GroupCount) ([]byte, error) {
	if len(groups) == 0 {
		return r.placeholder(title, "no data loaded")
	}

	bars := make([]chart.Value, len(groups))
	maxCount := 0
	for i, g := range groups {
		label := g.Key
		if label == "" {
			label = "(none)"
		}
		bars[i] = chart.Value{Value: float64(g.Count), Label: label}
		if g.Count > maxCount {
			maxCount = g.Count
		}
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: 64,
		Background: chart.Style{
			Padding: chart.Box{Top: 44, Left: 16, Right: 16},
		},
		YAxis: chart.YAxis{
			Name:           yLabel,
			ValueFormatter: chart.IntValueFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.15},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, apperrors.RenderError("failed to render bar chart", err)
	}
	return buf.Bytes(), nil
}
