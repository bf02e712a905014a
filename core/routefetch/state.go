package routefetch

import (
	"fmt"
	"time"

	"github.com/kilianp07/evrange/core/geo"
	"github.com/kilianp07/evrange/core/model"
)

// State is a step of one fetch attempt.
type State int

const (
	StateIdle State = iota
	StateResolvingStart
	StateResolvingEnd
	StateQueryingRoute
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingStart:
		return "resolving_start"
	case StateResolvingEnd:
		return "resolving_end"
	case StateQueryingRoute:
		return "querying_route"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for v := StateIdle; v <= StateFailed; v++ {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Terminal reports whether the state ends an attempt.
func (s State) Terminal() bool { return s == StateSucceeded || s == StateFailed }

// Status is the human-readable progress emitted at every transition.
type Status struct {
	FetchID string    `json:"fetch_id"`
	State   State     `json:"state"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Outcome is the result of one fetch attempt.
type Outcome struct {
	FetchID string                 `json:"fetch_id"`
	State   State                  `json:"state"`
	Start   model.GeoCoordinate    `json:"start"`
	End     model.GeoCoordinate    `json:"end"`
	Route   model.RouteQueryResult `json:"route"`
	// DistanceKm is the route distance rounded to one decimal place.
	DistanceKm float64       `json:"distance_km"`
	Duration   time.Duration `json:"duration"`
	// ElevationManual is always true: the routing service does not report
	// elevation so it must be entered by hand.
	ElevationManual bool     `json:"elevation_manual"`
	Kind            geo.Kind `json:"-"`
	Message         string   `json:"message"`
	Err             error    `json:"-"`
}

// Succeeded reports a complete fetch.
func (o Outcome) Succeeded() bool { return o.State == StateSucceeded }

// KindName is the failure kind, empty on success.
func (o Outcome) KindName() string {
	if o.Succeeded() {
		return ""
	}
	return o.Kind.String()
}
