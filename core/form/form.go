// Package form holds the shared calculation inputs: the text of every field,
// the selected vehicle profile and the Custom profile kept in sync with the
// battery and efficiency fields while it is selected.
package form

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kilianp07/evrange/core/estimator"
	"github.com/kilianp07/evrange/core/logger"
	"github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/validation"
)

// ResetMessage is the status reported after Reset.
const ResetMessage = "Inputs reset to default values for Custom profile."

// Result is the outcome of a calculation.
type Result struct {
	Params  model.CalculationParameters `json:"params"`
	Result  model.CalculationResult     `json:"result"`
	Summary string                      `json:"summary"`
}

// Form is safe for concurrent use.
type Form struct {
	mu       sync.RWMutex
	in       validation.Inputs
	profiles *model.ProfileSet
	metrics  metrics.MetricsSink
	logger   logger.Logger
	now      func() time.Time
}

// New creates a Form with default inputs and the Custom profile selected.
func New(profiles *model.ProfileSet, sink metrics.MetricsSink, log logger.Logger) *Form {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	f := &Form{profiles: profiles, metrics: sink, logger: log, now: time.Now}
	f.in = DefaultInputs(profiles.Custom())
	return f
}

// DefaultInputs returns the startup values for the given Custom profile.
func DefaultInputs(custom model.VehicleProfile) validation.Inputs {
	return validation.Inputs{
		BatteryCapacity:    formatNumber(custom.BatteryKWh),
		Efficiency:         formatNumber(custom.EfficiencyWhPerKm),
		Distance:           formatNumber(model.DefaultRouteDistanceKm),
		ElevationGain:      "0",
		DrivingStyleFactor: "1.0",
		Weather:            model.WeatherSunny.String(),
		Profile:            custom.Name,
	}
}

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Inputs returns a snapshot of the current inputs.
func (f *Form) Inputs() validation.Inputs {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.in
}

// Profiles lists the vehicle profiles in display order.
func (f *Form) Profiles() []model.VehicleProfile { return f.profiles.List() }

// Set updates one field. Battery and efficiency edits are mirrored into the
// Custom profile while it is selected.
func (f *Form) Set(field validation.Field, value string) error {
	if !known(field) {
		return fmt.Errorf("unknown field %q", field)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.in = f.in.With(field, value)
	if field == validation.FieldBatteryCapacity || field == validation.FieldEfficiency {
		f.syncCustomLocked()
	}
	return nil
}

// Apply sets several fields at once.
func (f *Form) Apply(values map[validation.Field]string) error {
	for field := range values {
		if !known(field) {
			return fmt.Errorf("unknown field %q", field)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for field, v := range values {
		f.in = f.in.With(field, v)
	}
	f.syncCustomLocked()
	return nil
}

func known(field validation.Field) bool {
	for _, k := range validation.Fields {
		if k == field {
			return true
		}
	}
	return false
}

func (f *Form) syncCustomLocked() {
	if f.in.Profile != model.CustomProfileName {
		return
	}
	b, err := validation.ParseNumber(f.in.BatteryCapacity)
	if err != nil {
		b = 0
	}
	e, err := validation.ParseNumber(f.in.Efficiency)
	if err != nil {
		e = 0
	}
	f.profiles.UpdateCustom(b, e)
}

// SelectProfile selects a profile. A preset copies its values into the battery
// and efficiency fields; Custom keeps the current text. Other fields are kept.
func (f *Form) SelectProfile(name string) (model.VehicleProfile, error) {
	p, ok := f.profiles.Get(name)
	if !ok {
		return model.VehicleProfile{}, fmt.Errorf("unknown profile %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.in.Profile = p.Name
	if !p.IsCustom() {
		f.in.BatteryCapacity = formatNumber(p.BatteryKWh)
		f.in.Efficiency = formatNumber(p.EfficiencyWhPerKm)
	}
	f.logger.Debugf("selected profile %s", p.Name)
	return p, nil
}

// Reset restores the Custom defaults, selects Custom and restores every other
// field to its startup value.
func (f *Form) Reset() string {
	custom := f.profiles.ResetCustom()
	f.mu.Lock()
	f.in = DefaultInputs(custom)
	f.mu.Unlock()
	return ResetMessage
}

// SetDistanceKm writes a route distance with one decimal.
func (f *Form) SetDistanceKm(km float64) {
	f.mu.Lock()
	f.in.Distance = strconv.FormatFloat(km, 'f', 1, 64)
	f.mu.Unlock()
}

// Errors returns the current field errors.
func (f *Form) Errors() []validation.Error { return validation.Validate(f.Inputs()) }

// CanCalculate reports whether Calculate can run.
func (f *Form) CanCalculate() bool { return validation.CanCalculate(f.Inputs()) }

// CanFetchRoute reports whether a route fetch can be started.
func (f *Form) CanFetchRoute() bool { return validation.CanFetchRoute(f.Inputs()) }

// Calculate validates the inputs and estimates the range. On invalid input
// the first field error is returned and its message is the summary.
func (f *Form) Calculate() (Result, error) {
	in := f.Inputs()
	if in.Profile == "" {
		err := validation.Error{Message: "Please select a vehicle profile."}
		return Result{Summary: err.Message}, err
	}
	params, err := validation.Parse(in)
	if err != nil {
		return Result{Summary: err.Error()}, err
	}
	res := estimator.EstimateRange(params)
	out := Result{Params: params, Result: res, Summary: estimator.Summary(params, res)}

	ev := metrics.EstimateEvent{
		Profile:    in.Profile,
		Weather:    params.Weather.String(),
		RangeKm:    res.RangeKm,
		DistanceKm: params.DistanceKm,
		Feasible:   res.CanCompleteRoute,
		Time:       f.now(),
	}
	if err := f.metrics.RecordEstimate(ev); err != nil {
		f.logger.Warnf("record estimate: %v", err)
	}
	return out, nil
}
