package chart

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/montanaflynn/stats"

	"immunotrial/domain/report"
)

// boxStats holds the five-number summary plus the points beyond the 1.5 IQR
// whisker fences.
type boxStats struct {
	Q1, Median, Q3          float64
	WhiskerLow, WhiskerHigh float64
	Outliers                []float64
}

func computeBoxStats(values []float64) (boxStats, error) {
	if len(values) == 0 {
		return boxStats{}, fmt.Errorf("no values to summarize")
	}
	if len(values) == 1 {
		v := values[0]
		return boxStats{Q1: v, Median: v, Q3: v, WhiskerLow: v, WhiskerHigh: v}, nil
	}

	q, err := stats.Quartile(values)
	if err != nil {
		return boxStats{}, fmt.Errorf("failed to compute quartiles: %w", err)
	}

	iqr := q.Q3 - q.Q1
	loFence := q.Q1 - 1.5*iqr
	hiFence := q.Q3 + 1.5*iqr

	bs := boxStats{Q1: q.Q1, Median: q.Q2, Q3: q.Q3, WhiskerLow: q.Q1, WhiskerHigh: q.Q3}
	for _, v := range values {
		if v < loFence || v > hiFence {
			bs.Outliers = append(bs.Outliers, v)
			continue
		}
		if v < bs.WhiskerLow {
			bs.WhiskerLow = v
		}
		if v > bs.WhiskerHigh {
			bs.WhiskerHigh = v
		}
	}
	return bs, nil
}

// BoxPlot renders one population's responder vs non-responder frequency
// distributions side by side. Arms with no samples get a note in their slot
// instead of a box; a comparison with no samples at all renders a
// placeholder.
func (r *Renderer) BoxPlot(c report.PopulationComparison) ([]byte, error) {
	title := c.Label + " Relative Frequency by Drug Response"
	if len(c.NonResponders.Values) == 0 && len(c.Responders.Values) == 0 {
		return r.placeholder(title, "no samples in cohort")
	}

	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(color.White)
	dc.Clear()

	w, h := float64(r.width), float64(r.height)
	plotLeft, plotRight := 76.0, w-28
	plotTop, plotBottom := 52.0, h-68
	plotW := plotRight - plotLeft

	// Scale covers every point of both arms, outliers included.
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vs := range [][]float64{c.NonResponders.Values, c.Responders.Values} {
		for _, v := range vs {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	pad := (hi - lo) * 0.08
	if pad == 0 {
		pad = 1
	}
	scaleLo, scaleHi := lo-pad, hi+pad
	yPx := func(v float64) float64 {
		return plotBottom - (v-scaleLo)/(scaleHi-scaleLo)*(plotBottom-plotTop)
	}

	// Gridlines and tick labels.
	dc.SetLineWidth(1)
	for i := 0; i <= 4; i++ {
		v := scaleLo + float64(i)*(scaleHi-scaleLo)/4
		py := yPx(v)
		dc.SetColor(colorGrid)
		dc.DrawLine(plotLeft, py, plotRight, py)
		dc.Stroke()
		dc.SetColor(colorText)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f", v), plotLeft-8, py, 1, 0.5)
	}

	// Axes.
	dc.SetColor(colorText)
	dc.DrawLine(plotLeft, plotTop, plotLeft, plotBottom)
	dc.DrawLine(plotLeft, plotBottom, plotRight, plotBottom)
	dc.Stroke()

	// Arms in response order, "no" on the left.
	arms := []struct {
		label  string
		values []float64
	}{
		{"no", c.NonResponders.Values},
		{"yes", c.Responders.Values},
	}
	for i, arm := range arms {
		cx := plotLeft + plotW*(0.25+0.5*float64(i))
		dc.SetColor(colorText)
		dc.DrawStringAnchored(arm.label, cx, plotBottom+16, 0.5, 0.5)

		if len(arm.values) == 0 {
			dc.SetColor(colorMuted)
			dc.DrawStringAnchored("no samples", cx, (plotTop+plotBottom)/2, 0.5, 0.5)
			continue
		}

		bs, err := computeBoxStats(arm.values)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize %s arm: %w", arm.label, err)
		}
		r.drawBox(dc, cx, plotW*0.09, bs, yPx)
	}

	// Title and axis labels.
	dc.SetColor(colorText)
	dc.DrawStringAnchored(title, w/2, 24, 0.5, 0.5)
	dc.DrawStringAnchored("Patient Responded to Drug", plotLeft+plotW/2, h-28, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(-math.Pi/2, 20, h/2)
	dc.DrawStringAnchored(c.Label+" Relative Frequency Percentage", 20, h/2, 0.5, 0.5)
	dc.Pop()

	return encodePNG(dc)
}

// drawBox draws one box-and-whisker glyph centered on cx with half-width bw.
func (r *Renderer) drawBox(dc *gg.Context, cx, bw float64, bs boxStats, yPx func(float64) float64) {
	q1, med, q3 := yPx(bs.Q1), yPx(bs.Median), yPx(bs.Q3)
	wLo, wHi := yPx(bs.WhiskerLow), yPx(bs.WhiskerHigh)

	// Whiskers with caps.
	dc.SetColor(colorBoxLine)
	dc.SetLineWidth(1)
	dc.DrawLine(cx, q3, cx, wHi)
	dc.DrawLine(cx, q1, cx, wLo)
	dc.DrawLine(cx-bw*0.6, wHi, cx+bw*0.6, wHi)
	dc.DrawLine(cx-bw*0.6, wLo, cx+bw*0.6, wLo)
	dc.Stroke()

	// Interquartile box.
	dc.DrawRectangle(cx-bw, q3, 2*bw, q1-q3)
	dc.SetColor(colorBoxFill)
	dc.FillPreserve()
	dc.SetColor(colorBoxLine)
	dc.Stroke()

	// Median line.
	dc.SetColor(colorMedian)
	dc.SetLineWidth(2)
	dc.DrawLine(cx-bw, med, cx+bw, med)
	dc.Stroke()
	dc.SetLineWidth(1)

	// Outliers.
	dc.SetColor(colorBoxLine)
	for _, v := range bs.Outliers {
		dc.DrawCircle(cx, yPx(v), 3)
		dc.Stroke()
	}
}
