package model

import (
	"fmt"
	"sync"
)

// CustomProfileName identifies the user-editable profile.
const CustomProfileName = "Custom"

// Default values of the Custom profile, restored on reset.
const (
	DefaultBatteryKWh      = 75.0
	DefaultEfficiencyWhKm  = 160.0
	DefaultDrivingStyle    = 1.0
	DefaultRouteDistanceKm = 300.0
)

// VehicleProfile is a named battery/efficiency preset.
type VehicleProfile struct {
	Name              string  `json:"name" yaml:"name"`
	BatteryKWh        float64 `json:"battery_kwh" yaml:"battery_kwh"`                   // usable battery capacity in kWh
	EfficiencyWhPerKm float64 `json:"efficiency_wh_per_km" yaml:"efficiency_wh_per_km"` // consumption in Wh/km
}

// IsCustom reports whether p is the user-editable profile.
func (p VehicleProfile) IsCustom() bool { return p.Name == CustomProfileName }

// Validate checks that the profile values are usable by the estimator.
// The Custom profile may temporarily hold zeros while the user is typing.
func (p VehicleProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.IsCustom() {
		return nil
	}
	if p.BatteryKWh <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	if p.EfficiencyWhPerKm <= 0 {
		return fmt.Errorf("efficiency must be positive")
	}
	return nil
}

// DefaultPresets returns the built-in profiles, Custom first.
func DefaultPresets() []VehicleProfile {
	return []VehicleProfile{
		{Name: CustomProfileName, BatteryKWh: DefaultBatteryKWh, EfficiencyWhPerKm: DefaultEfficiencyWhKm},
		{Name: "Tesla Model 3 LR", BatteryKWh: 75, EfficiencyWhPerKm: 150},
		{Name: "Nissan Leaf", BatteryKWh: 40, EfficiencyWhPerKm: 160},
		{Name: "Chevy Bolt", BatteryKWh: 65, EfficiencyWhPerKm: 170},
	}
}

// ProfileSet is an ordered list of profiles that always contains exactly one
// Custom profile. The Custom values are only changed through UpdateCustom and
// ResetCustom.
type ProfileSet struct {
	mu       sync.RWMutex
	profiles []VehicleProfile
	custom   int
}

// NewProfileSet builds a set from presets. A Custom profile with default values
// is prepended when none is given; duplicated names are rejected.
func NewProfileSet(presets []VehicleProfile) (*ProfileSet, error) {
	s := &ProfileSet{custom: -1}
	seen := make(map[string]struct{}, len(presets)+1)
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		if _, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.IsCustom() {
			s.custom = len(s.profiles)
		}
		s.profiles = append(s.profiles, p)
	}
	if s.custom < 0 {
		custom := VehicleProfile{Name: CustomProfileName, BatteryKWh: DefaultBatteryKWh, EfficiencyWhPerKm: DefaultEfficiencyWhKm}
		s.profiles = append([]VehicleProfile{custom}, s.profiles...)
		s.custom = 0
	}
	return s, nil
}

// List returns a copy of the profiles in order.
func (s *ProfileSet) List() []VehicleProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]VehicleProfile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Get looks up a profile by name.
func (s *ProfileSet) Get(name string) (VehicleProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return VehicleProfile{}, false
}

// Custom returns the current Custom profile.
func (s *ProfileSet) Custom() VehicleProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[s.custom]
}

// UpdateCustom overwrites the Custom battery and efficiency values.
func (s *ProfileSet) UpdateCustom(batteryKWh, efficiencyWhPerKm float64) {
	s.mu.Lock()
	s.profiles[s.custom].BatteryKWh = batteryKWh
	s.profiles[s.custom].EfficiencyWhPerKm = efficiencyWhPerKm
	s.mu.Unlock()
}

// ResetCustom restores the Custom defaults and returns the result.
func (s *ProfileSet) ResetCustom() VehicleProfile {
	s.UpdateCustom(DefaultBatteryKWh, DefaultEfficiencyWhKm)
	return s.Custom()
}
