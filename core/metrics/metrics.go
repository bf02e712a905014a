package metrics

import "time"

// EstimateEvent describes one range calculation.
type EstimateEvent struct {
	Profile    string
	Weather    string
	RangeKm    float64
	DistanceKm float64
	// Feasible is nil when no route distance was provided.
	Feasible *bool
	Time     time.Time
}

// FeasibilityLabel renders Feasible as "true", "false" or "unknown".
func (e EstimateEvent) FeasibilityLabel() string {
	switch {
	case e.Feasible == nil:
		return "unknown"
	case *e.Feasible:
		return "true"
	default:
		return "false"
	}
}

// MetricsSink records range estimates for observability purposes.
type MetricsSink interface {
	RecordEstimate(ev EstimateEvent) error
}

// Route fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// FetchEvent captures the end of a route data fetch.
type FetchEvent struct {
	FetchID    string
	Outcome    string
	Kind       string
	DistanceKm float64
	Duration   time.Duration
	Elapsed    time.Duration
	Time       time.Time
}

// FetchRecorder records route fetch outcomes.
type FetchRecorder interface {
	RecordFetch(ev FetchEvent) error
}

// UpstreamCallEvent captures one call to the geocoding or routing service.
type UpstreamCallEvent struct {
	FetchID string
	Service string
	// Kind is "ok" on success, otherwise the failure kind.
	Kind    string
	Latency time.Duration
	Time    time.Time
}

// UpstreamCallRecorder records upstream call latencies.
type UpstreamCallRecorder interface {
	RecordUpstreamCall(ev UpstreamCallEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordEstimate(EstimateEvent) error         { return nil }
func (NopSink) RecordFetch(FetchEvent) error               { return nil }
func (NopSink) RecordUpstreamCall(UpstreamCallEvent) error { return nil }
