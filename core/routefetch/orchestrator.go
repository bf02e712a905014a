// Package routefetch resolves a start and an end location, queries the
// driving route between them and writes the route distance into the
// calculation inputs. Steps run strictly one after another so that each
// transition can be reported as a status update.
package routefetch

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/kilianp07/evrange/core/geo"
	"github.com/kilianp07/evrange/core/logger"
	"github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/monitoring"
	"github.com/kilianp07/evrange/internal/eventbus"
)

// ErrFetchInProgress is returned when Fetch is called while another attempt
// is still running.
var ErrFetchInProgress = &geo.Error{Kind: geo.KindValidation, Op: "fetch", Message: msgBusy}

// DistanceWriter receives the route distance on success. It is the only
// shared state the orchestrator mutates.
type DistanceWriter interface {
	SetDistanceKm(km float64)
}

// Orchestrator runs route data fetches. It refuses overlapping runs.
type Orchestrator struct {
	geocoder geo.Geocoder
	router   geo.Router
	metrics  metrics.MetricsSink
	bus      *eventbus.TypedBus[Status]
	logger   logger.Logger

	busy    atomic.Bool
	mu      sync.RWMutex
	last    Status
	history History

	now   func() time.Time
	newID func() string
}

// NewOrchestrator creates an Orchestrator. A nil sink, bus or logger is
// replaced by a no-op implementation.
func NewOrchestrator(g geo.Geocoder, r geo.Router, sink metrics.MetricsSink, bus *eventbus.TypedBus[Status], log logger.Logger) *Orchestrator {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if bus == nil {
		bus = eventbus.NewTyped[Status]()
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Orchestrator{
		geocoder: g,
		router:   r,
		metrics:  sink,
		bus:      bus,
		logger:   log,
		last:     Status{State: StateIdle},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Bus returns the status bus.
func (o *Orchestrator) Bus() *eventbus.TypedBus[Status] { return o.bus }

// Busy reports whether a fetch is running.
func (o *Orchestrator) Busy() bool { return o.busy.Load() }

// LastStatus returns the most recent status update.
func (o *Orchestrator) LastStatus() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last
}

// Fetch resolves start and end, queries the route and writes the distance to
// w on full success. The returned error is nil only on success; the Outcome
// always carries the final status message. Once Fetch returns the
// orchestrator is ready for another attempt.
func (o *Orchestrator) Fetch(ctx context.Context, start, end string, w DistanceWriter) (Outcome, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return Outcome{State: StateFailed, Kind: geo.KindValidation, Message: msgBusy, Err: ErrFetchInProgress}, ErrFetchInProgress
	}
	defer o.busy.Store(false)

	began := o.now()
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	run := &attempt{o: o, id: o.newID()}
	out := run.execute(ctx, start, end)
	if out.Succeeded() && w != nil {
		w.SetDistanceKm(out.DistanceKm)
	}
	o.record(out, o.now().Sub(began))
	o.remember(ctx, start, end, out)
	return out, out.Err
}

func (o *Orchestrator) emit(id string, s State, msg string) {
	st := Status{FetchID: id, State: s, Message: msg, Time: o.now()}
	o.mu.Lock()
	o.last = st
	o.mu.Unlock()
	o.bus.Publish(st)
	o.logger.Debugw("route fetch status", map[string]any{"fetch_id": id, "state": s.String(), "message": msg})
}

func (o *Orchestrator) record(out Outcome, elapsed time.Duration) {
	ev := metrics.FetchEvent{
		FetchID:    out.FetchID,
		Outcome:    metrics.OutcomeSuccess,
		DistanceKm: out.DistanceKm,
		Duration:   out.Duration,
		Elapsed:    elapsed,
		Time:       o.now(),
	}
	if !out.Succeeded() {
		ev.Outcome = metrics.OutcomeFailure
		ev.Kind = out.KindName()
	}
	if rec, ok := o.metrics.(metrics.FetchRecorder); ok {
		if err := rec.RecordFetch(ev); err != nil {
			o.logger.Warnf("record fetch: %v", err)
		}
	}
}

// attempt carries the state of a single Fetch call.
type attempt struct {
	o  *Orchestrator
	id string
}

func (a *attempt) execute(ctx context.Context, start, end string) Outcome {
	out := Outcome{FetchID: a.id, ElevationManual: true}
	if start == "" || end == "" {
		return a.fail(out, "", geo.KindValidation, msgMissingInputs,
			&geo.Error{Kind: geo.KindValidation, Op: "fetch", Message: msgMissingInputs})
	}
	a.o.emit(a.id, StateIdle, msgInitiating)

	a.o.emit(a.id, StateResolvingStart, msgResolveStart)
	from, err := a.geocode(ctx, start)
	if err != nil {
		return a.fail(out, "geocode_start", geo.KindOf(err), geocodeFailure(start, err), err)
	}
	out.Start = from

	a.o.emit(a.id, StateResolvingEnd, msgResolveEnd)
	to, err := a.geocode(ctx, end)
	if err != nil {
		return a.fail(out, "geocode_end", geo.KindOf(err), geocodeFailure(end, err), err)
	}
	out.End = to

	a.o.emit(a.id, StateQueryingRoute, queryingMessage(from, to))
	route, err := a.route(ctx, from, to)
	if err != nil {
		return a.fail(out, "route", geo.KindOf(err), routeFailure(err), err)
	}

	out.State = StateSucceeded
	out.Route = route
	out.DistanceKm = scalar.Round(route.DistanceMeters/1000, 1)
	out.Duration = route.Duration()
	out.Message = successMessage(out.DistanceKm, out.Duration)
	a.o.emit(a.id, StateSucceeded, out.Message)
	a.o.logger.Infof("route fetch %s succeeded: %.1f km", a.id, out.DistanceKm)
	return out
}

func (a *attempt) fail(out Outcome, stage string, kind geo.Kind, msg string, err error) Outcome {
	out.State = StateFailed
	out.Kind = kind
	out.Message = msg
	out.Err = err
	a.o.emit(a.id, StateFailed, msg)
	a.o.logger.Warnf("route fetch %s failed at %s: %v", a.id, stage, err)
	switch kind {
	case geo.KindNetwork, geo.KindUpstream, geo.KindUpstreamFormat:
		monitoring.CaptureException(err, monitoring.Tags("routefetch", stage, kind.String()))
	}
	return out
}

func (a *attempt) geocode(ctx context.Context, name string) (model.GeoCoordinate, error) {
	began := a.o.now()
	c, err := a.o.geocoder.Geocode(ctx, name)
	a.observe("geocoder", began, err)
	return c, err
}

func (a *attempt) route(ctx context.Context, from, to model.GeoCoordinate) (model.RouteQueryResult, error) {
	began := a.o.now()
	r, err := a.o.router.Route(ctx, from, to)
	a.observe("router", began, err)
	return r, err
}

func (a *attempt) observe(service string, began time.Time, err error) {
	rec, ok := a.o.metrics.(metrics.UpstreamCallRecorder)
	if !ok {
		return
	}
	kind := "ok"
	if err != nil {
		kind = geo.KindOf(err).String()
	}
	ev := metrics.UpstreamCallEvent{FetchID: a.id, Service: service, Kind: kind, Latency: a.o.now().Sub(began), Time: a.o.now()}
	if rerr := rec.RecordUpstreamCall(ev); rerr != nil {
		a.o.logger.Warnf("record upstream call: %v", rerr)
	}
}
