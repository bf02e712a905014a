package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"gonum.org/v1/gonum/floats/scalar"

	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes estimate and fetch events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEstimate writes a range_estimate point.
func (s *InfluxSink) RecordEstimate(ev coremetrics.EstimateEvent) error {
	p := write.NewPointWithMeasurement("range_estimate").
		AddTag("weather", ev.Weather).
		AddTag("feasible", ev.FeasibilityLabel())
	if ev.Profile != "" {
		p = p.AddTag("profile", ev.Profile)
	}
	p = p.AddField("range_km", round3(ev.RangeKm)).
		AddField("distance_km", round3(ev.DistanceKm)).
		SetTime(eventTime(ev.Time))
	return s.write(p)
}

// RecordFetch writes a route_fetch point.
func (s *InfluxSink) RecordFetch(ev coremetrics.FetchEvent) error {
	p := write.NewPointWithMeasurement("route_fetch").
		AddTag("outcome", ev.Outcome).
		AddTag("fetch_id", ev.FetchID)
	if ev.Kind != "" {
		p = p.AddTag("kind", ev.Kind)
	}
	p = p.AddField("distance_km", round3(ev.DistanceKm)).
		AddField("duration_s", round3(ev.Duration.Seconds())).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		SetTime(eventTime(ev.Time))
	return s.write(p)
}

// RecordUpstreamCall writes an upstream_call point.
func (s *InfluxSink) RecordUpstreamCall(ev coremetrics.UpstreamCallEvent) error {
	p := write.NewPointWithMeasurement("upstream_call").
		AddTag("service", ev.Service).
		AddTag("kind", ev.Kind).
		AddTag("fetch_id", ev.FetchID).
		AddField("latency_ms", round3(ev.Latency.Seconds()*1000)).
		SetTime(eventTime(ev.Time))
	return s.write(p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func round3(f float64) float64 { return scalar.Round(f, 3) }
