// Package chart renders range sensitivity charts as standalone HTML pages.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/evrange/core/estimator"
	"github.com/kilianp07/evrange/core/model"
)

// StyleFactors are the driving style factors plotted on the x axis.
var StyleFactors = []float64{0.6, 0.8, 1.0, 1.2, 1.4, 1.6, 1.8, 2.0}

// Series is the range of one weather condition at every style factor.
type Series struct {
	Weather model.Weather
	RangeKm []float64
}

// Sweep estimates the range of p for every weather condition and style
// factor. The other parameters are kept.
func Sweep(p model.CalculationParameters) []Series {
	out := make([]Series, 0, len(model.Weathers))
	for _, w := range model.Weathers {
		s := Series{Weather: w, RangeKm: make([]float64, len(StyleFactors))}
		for i, f := range StyleFactors {
			q := p
			q.Weather = w
			q.DrivingStyleFactor = f
			s.RangeKm[i] = estimator.Round2(estimator.EstimateRange(q).RangeKm)
		}
		out = append(out, s)
	}
	return out
}

// RenderRange writes a line chart of Sweep(p). When a route distance is set
// it is drawn as a flat reference series.
func RenderRange(w io.Writer, title string, p model.CalculationParameters) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%.1f kWh, %.0f Wh/km, %.0f m climb", p.BatteryKWh, p.EfficiencyWhPerKm, p.ElevationGainM),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Driving style factor"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Range (km)"}),
	)

	x := make([]string, len(StyleFactors))
	for i, f := range StyleFactors {
		x[i] = strconv.FormatFloat(f, 'f', 1, 64)
	}
	line.SetXAxis(x)
	for _, s := range Sweep(p) {
		data := make([]opts.LineData, len(s.RangeKm))
		for i, v := range s.RangeKm {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Weather.String(), data)
	}
	if p.DistanceKm > 0 {
		data := make([]opts.LineData, len(StyleFactors))
		for i := range data {
			data[i] = opts.LineData{Value: p.DistanceKm}
		}
		line.AddSeries("Route distance", data)
	}
	return line.Render(w)
}

// RangeHTML returns the page rendered by RenderRange.
func RangeHTML(title string, p model.CalculationParameters) (string, error) {
	var buf bytes.Buffer
	if err := RenderRange(&buf, title, p); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return buf.String(), nil
}
