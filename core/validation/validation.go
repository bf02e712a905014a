// Package validation checks the textual calculation inputs field by field and
// converts them into estimator parameters.
package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/evrange/core/model"
)

// Field names an input field.
type Field string

const (
	FieldBatteryCapacity    Field = "batteryCapacity"
	FieldEfficiency         Field = "efficiency"
	FieldDistance           Field = "distance"
	FieldElevationGain      Field = "elevationGain"
	FieldDrivingStyleFactor Field = "drivingStyleFactor"
	FieldWeather            Field = "weatherSelection"
	FieldStartLocation      Field = "startLocation"
	FieldEndLocation        Field = "endLocation"
)

// Fields lists every validated field in display order.
var Fields = []Field{
	FieldBatteryCapacity,
	FieldEfficiency,
	FieldDistance,
	FieldElevationGain,
	FieldDrivingStyleFactor,
	FieldWeather,
	FieldStartLocation,
	FieldEndLocation,
}

// calculationFields gate the calculate action.
var calculationFields = []Field{
	FieldBatteryCapacity,
	FieldEfficiency,
	FieldDistance,
	FieldElevationGain,
	FieldDrivingStyleFactor,
	FieldWeather,
}

// Inputs is the current value set of the form, as typed by the user.
type Inputs struct {
	BatteryCapacity    string `json:"battery_capacity"`
	Efficiency         string `json:"efficiency"`
	Distance           string `json:"distance"`
	ElevationGain      string `json:"elevation_gain"`
	DrivingStyleFactor string `json:"driving_style_factor"`
	Weather            string `json:"weather"`
	StartLocation      string `json:"start_location"`
	EndLocation        string `json:"end_location"`
	// Profile is the selected vehicle profile name, empty when none.
	Profile string `json:"profile"`
}

// Value returns the text of the given field.
func (in Inputs) Value(f Field) string {
	switch f {
	case FieldBatteryCapacity:
		return in.BatteryCapacity
	case FieldEfficiency:
		return in.Efficiency
	case FieldDistance:
		return in.Distance
	case FieldElevationGain:
		return in.ElevationGain
	case FieldDrivingStyleFactor:
		return in.DrivingStyleFactor
	case FieldWeather:
		return in.Weather
	case FieldStartLocation:
		return in.StartLocation
	case FieldEndLocation:
		return in.EndLocation
	default:
		return ""
	}
}

// With returns a copy of in with field f set to value.
func (in Inputs) With(f Field, value string) Inputs {
	switch f {
	case FieldBatteryCapacity:
		in.BatteryCapacity = value
	case FieldEfficiency:
		in.Efficiency = value
	case FieldDistance:
		in.Distance = value
	case FieldElevationGain:
		in.ElevationGain = value
	case FieldDrivingStyleFactor:
		in.DrivingStyleFactor = value
	case FieldWeather:
		in.Weather = value
	case FieldStartLocation:
		in.StartLocation = value
	case FieldEndLocation:
		in.EndLocation = value
	}
	return in
}

// Error is a validation failure attached to one field.
type Error struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

func (e Error) Error() string { return e.Message }

// Check returns the error message for field f, or "" when the value is valid.
func Check(f Field, in Inputs) string {
	switch f {
	case FieldBatteryCapacity:
		return positive("Battery capacity", in.BatteryCapacity, "")
	case FieldEfficiency:
		return positive("Efficiency", in.Efficiency, " (Wh/km)")
	case FieldDrivingStyleFactor:
		return positive("Driving style factor", in.DrivingStyleFactor, " (e.g., 0.8 for eco, 1.2 for sporty)")
	case FieldDistance:
		if blank(in.Distance) {
			return ""
		}
		return nonNegative("Distance", in.Distance)
	case FieldElevationGain:
		if blank(in.ElevationGain) {
			return "Elevation gain is required."
		}
		return nonNegative("Elevation gain", in.ElevationGain)
	case FieldWeather:
		if blank(in.Weather) {
			return "Please select a weather condition."
		}
		if _, err := model.ParseWeather(in.Weather); err != nil {
			return fmt.Sprintf("Unknown weather condition %q.", strings.TrimSpace(in.Weather))
		}
		return ""
	case FieldStartLocation:
		if blank(in.StartLocation) && !blank(in.EndLocation) {
			return "Start location cannot be empty if End location is provided."
		}
		return ""
	case FieldEndLocation:
		if blank(in.EndLocation) && !blank(in.StartLocation) {
			return "End location cannot be empty if Start location is provided."
		}
		return ""
	default:
		return ""
	}
}

// Validate returns the errors of every field, in display order.
func Validate(in Inputs) []Error {
	var errs []Error
	for _, f := range Fields {
		if msg := Check(f, in); msg != "" {
			errs = append(errs, Error{Field: f, Message: msg})
		}
	}
	return errs
}

// CanCalculate reports whether the numeric and weather fields are valid and a
// vehicle profile is selected.
func CanCalculate(in Inputs) bool {
	if blank(in.Profile) {
		return false
	}
	for _, f := range calculationFields {
		if Check(f, in) != "" {
			return false
		}
	}
	return true
}

// CanFetchRoute reports whether both locations are filled in and valid.
func CanFetchRoute(in Inputs) bool {
	return !blank(in.StartLocation) && !blank(in.EndLocation) &&
		Check(FieldStartLocation, in) == "" && Check(FieldEndLocation, in) == ""
}

// Parse converts the inputs into estimator parameters. The first failing
// field is returned as an Error.
func Parse(in Inputs) (model.CalculationParameters, error) {
	for _, f := range calculationFields {
		if msg := Check(f, in); msg != "" {
			return model.CalculationParameters{}, Error{Field: f, Message: msg}
		}
	}
	var p model.CalculationParameters
	p.BatteryKWh, _ = ParseNumber(in.BatteryCapacity)
	p.EfficiencyWhPerKm, _ = ParseNumber(in.Efficiency)
	if !blank(in.Distance) {
		p.DistanceKm, _ = ParseNumber(in.Distance)
	}
	p.ElevationGainM, _ = ParseNumber(in.ElevationGain)
	p.DrivingStyleFactor, _ = ParseNumber(in.DrivingStyleFactor)
	p.Weather, _ = model.ParseWeather(in.Weather)
	return p, nil
}

// ParseNumber parses a decimal number using '.' as separator regardless of
// the process locale. Non-finite values are rejected.
func ParseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func positive(label, s, hint string) string {
	if blank(s) {
		return label + " is required."
	}
	v, err := ParseNumber(s)
	if err != nil {
		return label + " must be a number."
	}
	if v <= 0 {
		return label + " must be a positive number" + hint + "."
	}
	return ""
}

func nonNegative(label, s string) string {
	v, err := ParseNumber(s)
	if err != nil {
		return label + " must be a number."
	}
	if v < 0 {
		return label + " must be a non-negative number."
	}
	return ""
}
