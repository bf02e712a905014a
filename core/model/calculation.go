package model

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// CalculationParameters is an immutable snapshot of the estimator inputs.
type CalculationParameters struct {
	BatteryKWh         float64 `json:"battery_kwh"`
	EfficiencyWhPerKm  float64 `json:"efficiency_wh_per_km"`
	DistanceKm         float64 `json:"distance_km"` // 0 means not provided
	ElevationGainM     float64 `json:"elevation_gain_m"`
	Weather            Weather `json:"weather"`
	DrivingStyleFactor float64 `json:"driving_style_factor"` // 1.0 neutral, >1 sporty, <1 eco
}

// CalculationResult is the estimator output.
type CalculationResult struct {
	RangeKm float64 `json:"range_km"`
	// CanCompleteRoute is nil when no distance was provided.
	CanCompleteRoute *bool `json:"can_complete_route"`
}

// GeoCoordinate is a WGS84 position in degrees.
type GeoCoordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point returns the coordinate as an orb point (lon, lat).
func (c GeoCoordinate) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

// StraightLineKm returns the great-circle distance to o in kilometres.
func (c GeoCoordinate) StraightLineKm(o GeoCoordinate) float64 {
	return geo.Distance(c.Point(), o.Point()) / 1000
}

// RouteQueryResult holds the aggregate metrics of a driving route.
type RouteQueryResult struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Duration returns the travel time as a time.Duration.
func (r RouteQueryResult) Duration() time.Duration {
	return time.Duration(r.DurationSeconds * float64(time.Second))
}
