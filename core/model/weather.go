package model

import (
	"fmt"
	"strings"
)

// Weather is the driving condition applied to the efficiency estimate.
type Weather int

const (
	WeatherSunny Weather = iota
	WeatherRainy
	WeatherSnowy
)

// Weathers lists the recognised conditions in display order.
var Weathers = []Weather{WeatherSunny, WeatherRainy, WeatherSnowy}

// String returns the display name of the condition.
func (w Weather) String() string {
	switch w {
	case WeatherSunny:
		return "Sunny"
	case WeatherRainy:
		return "Rainy"
	case WeatherSnowy:
		return "Snowy"
	default:
		return "unknown"
	}
}

// Valid reports whether w is a member of the enumeration.
func (w Weather) Valid() bool {
	return w >= WeatherSunny && w <= WeatherSnowy
}

// EfficiencyFactor is the multiplier applied to the adjusted efficiency.
func (w Weather) EfficiencyFactor() float64 {
	switch w {
	case WeatherRainy:
		return 0.90
	case WeatherSnowy:
		return 0.80
	default:
		return 1.0
	}
}

// ParseWeather maps a condition name, case-insensitively, to a Weather.
// The legacy labels Ideal, Moderate and Adverse are accepted as aliases.
func ParseWeather(s string) (Weather, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunny", "ideal":
		return WeatherSunny, nil
	case "rainy", "moderate":
		return WeatherRainy, nil
	case "snowy", "adverse":
		return WeatherSnowy, nil
	default:
		return 0, fmt.Errorf("unknown weather condition %q", s)
	}
}

// MarshalText encodes the condition by name.
func (w Weather) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid weather %d", int(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText decodes a condition name.
func (w *Weather) UnmarshalText(b []byte) error {
	v, err := ParseWeather(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}
