// Package estimator computes the driving range of an electric vehicle from its
// battery, consumption and driving conditions. Functions are pure and safe for
// concurrent use.
package estimator

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/kilianp07/evrange/core/model"
)

// elevationPenaltyPer100m is the efficiency penalty per 100 m of climb.
const elevationPenaltyPer100m = 0.05

// AdjustedEfficiency applies, in order, the elevation, weather and driving
// style adjustments to the base efficiency in Wh/km.
func AdjustedEfficiency(p model.CalculationParameters) float64 {
	eff := p.EfficiencyWhPerKm
	if p.ElevationGainM > 0 {
		eff *= 1 - (p.ElevationGainM/100)*elevationPenaltyPer100m
	}
	eff *= p.Weather.EfficiencyFactor()
	// A sportier style (factor > 1) raises consumption and so shortens the
	// range in proportion; factor 2.0 halves it.
	if p.DrivingStyleFactor > 0 {
		eff *= p.DrivingStyleFactor
	}
	return eff
}

// EstimateRange returns the range in kilometres and whether it covers the
// requested distance. CanCompleteRoute is nil when DistanceKm is zero.
func EstimateRange(p model.CalculationParameters) model.CalculationResult {
	var res model.CalculationResult
	if p.EfficiencyWhPerKm > 0 {
		if eff := AdjustedEfficiency(p); eff > 0 {
			res.RangeKm = p.BatteryKWh * 1000 / eff
		}
	}
	if p.DistanceKm > 0 {
		ok := res.RangeKm >= p.DistanceKm
		res.CanCompleteRoute = &ok
	}
	return res
}

// Round2 rounds a range to the two decimals shown to the user.
func Round2(km float64) float64 { return scalar.Round(km, 2) }

// Summary renders the result the way it is displayed to the user.
func Summary(p model.CalculationParameters, r model.CalculationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimated Range: %.2f km", r.RangeKm)
	if r.CanCompleteRoute != nil {
		verdict := "No"
		if *r.CanCompleteRoute {
			verdict = "Yes"
		}
		fmt.Fprintf(&b, "\nCan complete %.2f km route: %s", p.DistanceKm, verdict)
	} else {
		b.WriteString("\n(Distance for route feasibility not provided)")
	}
	return b.String()
}
