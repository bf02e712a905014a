package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evrange/core/metrics"
)

// PromSink records estimates and route fetches in Prometheus metrics.
type PromSink struct {
	estimates *prometheus.CounterVec
	rangeKm   prometheus.Histogram
	fetches   *prometheus.CounterVec
	upstream  *prometheus.HistogramVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	estimates, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "range_estimates_total",
		Help: "Total number of range estimates",
	}, []string{"weather", "feasible"}))
	if err != nil {
		return nil, err
	}
	rangeKm, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "range_estimate_km",
		Help:    "Distribution of estimated ranges in kilometers",
		Buckets: prometheus.LinearBuckets(50, 50, 16),
	}))
	if err != nil {
		return nil, err
	}
	fetches, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_fetch_total",
		Help: "Total number of route data fetches by outcome",
	}, []string{"outcome", "kind"}))
	if err != nil {
		return nil, err
	}
	upstream, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_call_seconds",
		Help:    "Latency of geocoding and routing calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "kind"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{estimates: estimates, rangeKm: rangeKm, fetches: fetches, upstream: upstream}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordEstimate counts the estimate and observes its range.
func (s *PromSink) RecordEstimate(ev coremetrics.EstimateEvent) error {
	s.estimates.WithLabelValues(ev.Weather, ev.FeasibilityLabel()).Inc()
	s.rangeKm.Observe(ev.RangeKm)
	return nil
}

// RecordFetch counts a finished route fetch.
func (s *PromSink) RecordFetch(ev coremetrics.FetchEvent) error {
	kind := ev.Kind
	if kind == "" {
		kind = "none"
	}
	s.fetches.WithLabelValues(ev.Outcome, kind).Inc()
	return nil
}

// RecordUpstreamCall observes the latency of one upstream call.
func (s *PromSink) RecordUpstreamCall(ev coremetrics.UpstreamCallEvent) error {
	s.upstream.WithLabelValues(ev.Service, ev.Kind).Observe(ev.Latency.Seconds())
	return nil
}
