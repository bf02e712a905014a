package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrange/core/model"
)

func params() model.CalculationParameters {
	return model.CalculationParameters{
		BatteryKWh:         75,
		EfficiencyWhPerKm:  160,
		DistanceKm:         300,
		Weather:            model.WeatherSunny,
		DrivingStyleFactor: 1.0,
	}
}

func TestSweep(t *testing.T) {
	series := Sweep(params())
	require.Len(t, series, 3)
	assert.Equal(t, model.WeatherSunny, series[0].Weather)
	assert.Equal(t, model.WeatherSnowy, series[2].Weather)
	require.Len(t, series[0].RangeKm, len(StyleFactors))

	// factor 1.0 is the third point, factor 2.0 the last one
	assert.InDelta(t, 468.75, series[0].RangeKm[2], 1e-9)
	assert.InDelta(t, 234.38, series[0].RangeKm[7], 1e-9)
	assert.InDelta(t, 585.94, series[2].RangeKm[2], 1e-9)
	for _, s := range series {
		for i := 1; i < len(s.RangeKm); i++ {
			assert.Less(t, s.RangeKm[i], s.RangeKm[i-1], "range shrinks as the style gets sportier")
		}
	}
}

func TestRangeHTML(t *testing.T) {
	html, err := RangeHTML("Custom", params())
	require.NoError(t, err)
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Custom")
	assert.Contains(t, html, "Sunny")
	assert.Contains(t, html, "Snowy")
	assert.Contains(t, html, "Route distance")
	assert.Contains(t, html, "Driving style factor")
}

func TestRangeHTMLWithoutDistance(t *testing.T) {
	p := params()
	p.DistanceKm = 0
	html, err := RangeHTML("Custom", p)
	require.NoError(t, err)
	assert.NotContains(t, html, "Route distance")
}
