package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/evrange/core/metrics"
)

func newTestPromSink(t *testing.T, reg prometheus.Registerer) *PromSink {
	t.Helper()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	sink, ok := s.(*PromSink)
	require.True(t, ok, "expected PromSink, got %T", s)
	return sink
}

func TestPromSink_RecordEstimate(t *testing.T) {
	sink := newTestPromSink(t, prometheus.NewRegistry())
	yes := true
	require.NoError(t, sink.RecordEstimate(coremetrics.EstimateEvent{Weather: "Sunny", RangeKm: 468.75, Feasible: &yes}))
	require.NoError(t, sink.RecordEstimate(coremetrics.EstimateEvent{Weather: "Rainy", RangeKm: 421.88}))

	expected := `
# HELP range_estimates_total Total number of range estimates
# TYPE range_estimates_total counter
range_estimates_total{feasible="true",weather="Sunny"} 1
range_estimates_total{feasible="unknown",weather="Rainy"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(sink.estimates, strings.NewReader(expected)))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.rangeKm))
}

func TestPromSink_RecordFetchAndUpstream(t *testing.T) {
	sink := newTestPromSink(t, prometheus.NewRegistry())
	require.NoError(t, sink.RecordFetch(coremetrics.FetchEvent{Outcome: coremetrics.OutcomeSuccess}))
	require.NoError(t, sink.RecordFetch(coremetrics.FetchEvent{Outcome: coremetrics.OutcomeFailure, Kind: "not_found"}))
	require.NoError(t, sink.RecordUpstreamCall(coremetrics.UpstreamCallEvent{Service: "nominatim", Kind: "ok", Latency: 120 * time.Millisecond}))

	expected := `
# HELP route_fetch_total Total number of route data fetches by outcome
# TYPE route_fetch_total counter
route_fetch_total{kind="none",outcome="success"} 1
route_fetch_total{kind="not_found",outcome="failure"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(sink.fetches, strings.NewReader(expected)))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.upstream))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newTestPromSink(t, reg)
	second := newTestPromSink(t, reg)
	assert.Same(t, first.estimates, second.estimates)
	assert.Same(t, first.upstream, second.upstream)
}
