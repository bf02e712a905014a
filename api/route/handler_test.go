package route

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrange/core/form"
	"github.com/kilianp07/evrange/core/geo"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/routefetch"
)

type fakeGeocoder struct {
	coords map[string]model.GeoCoordinate
	block  chan struct{}
}

func (g *fakeGeocoder) Geocode(ctx context.Context, name string) (model.GeoCoordinate, error) {
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return model.GeoCoordinate{}, ctx.Err()
		}
	}
	c, ok := g.coords[name]
	if !ok {
		return model.GeoCoordinate{}, &geo.Error{Kind: geo.KindNotFound, Op: "geocode", Subject: name}
	}
	return c, nil
}

type fakeRouter struct{}

func (fakeRouter) Route(context.Context, model.GeoCoordinate, model.GeoCoordinate) (model.RouteQueryResult, error) {
	return model.RouteQueryResult{DistanceMeters: 123456, DurationSeconds: 3725}, nil
}

func setup(t *testing.T, g *fakeGeocoder) (*routefetch.Orchestrator, *form.Form) {
	t.Helper()
	profiles, err := model.NewProfileSet(model.DefaultPresets())
	require.NoError(t, err)
	f := form.New(profiles, nil, nil)
	return routefetch.NewOrchestrator(g, fakeRouter{}, nil, nil, nil), f
}

func knownPlaces() *fakeGeocoder {
	return &fakeGeocoder{coords: map[string]model.GeoCoordinate{
		"Paris": {Lat: 48.8566, Lon: 2.3522},
		"Lyon":  {Lat: 45.764, Lon: 4.8357},
	}}
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/route", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestFetchHandlerSuccess(t *testing.T) {
	o, f := setup(t, knownPlaces())
	rr := post(NewFetchHandler(o, f), `{"start":"Paris","end":"Lyon"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.InDelta(t, 123.5, resp.DistanceKm, 1e-9)
	assert.Empty(t, resp.Kind)
	assert.True(t, resp.ElevationManual)
	assert.Equal(t, "Route found! Distance: 123.5 km, Duration: 01:02:05. Please enter elevation manually.", resp.Message)
	assert.Equal(t, "123.5", resp.Inputs.Distance)
	assert.Equal(t, "123.5", f.Inputs().Distance)
	assert.Equal(t, "Paris", f.Inputs().StartLocation)
}

func TestFetchHandlerUsesFormLocations(t *testing.T) {
	o, f := setup(t, knownPlaces())
	rr := post(NewFetchHandler(o, f), ``)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "validation", resp.Kind)
	assert.Equal(t, "Please enter both start and end locations.", resp.Message)
	assert.Equal(t, "300", f.Inputs().Distance)
}

func TestFetchHandlerKeepsOmittedLocation(t *testing.T) {
	o, f := setup(t, knownPlaces())
	h := NewFetchHandler(o, f)
	require.Equal(t, http.StatusOK, post(h, `{"start":"Paris","end":"Lyon"}`).Code)

	rr := post(h, `{"start":"Lyon"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, routefetch.StateSucceeded, resp.State)
	assert.Equal(t, "Lyon", resp.Inputs.StartLocation)
	assert.Equal(t, "Lyon", resp.Inputs.EndLocation)

	require.Equal(t, http.StatusOK, post(h, `{"end":"Paris"}`).Code)
	assert.Equal(t, "Lyon", f.Inputs().StartLocation)
	assert.Equal(t, "Paris", f.Inputs().EndLocation)
}

func TestFetchHandlerNotFound(t *testing.T) {
	o, f := setup(t, knownPlaces())
	rr := post(NewFetchHandler(o, f), `{"start":"Atlantis","end":"Lyon"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, routefetch.StateFailed, resp.State)
	assert.Equal(t, "not_found", resp.Kind)
	assert.Equal(t, "No coordinates found for Atlantis.", resp.Message)
	assert.Equal(t, "300", f.Inputs().Distance)
}

func TestFetchHandlerConflict(t *testing.T) {
	g := knownPlaces()
	g.block = make(chan struct{})
	o, f := setup(t, g)
	h := NewFetchHandler(o, f)

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- post(h, `{"start":"Paris","end":"Lyon"}`) }()
	require.Eventually(t, o.Busy, time.Second, 5*time.Millisecond)

	rr := post(h, `{"start":"Nice","end":"Brest"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"A route data fetch is already in progress."}`, rr.Body.String())
	assert.Equal(t, "Paris", f.Inputs().StartLocation, "a refused request must not edit the form")
	assert.Equal(t, "Lyon", f.Inputs().EndLocation)

	close(g.block)
	first := <-done
	assert.Equal(t, http.StatusOK, first.Code)
}

func TestFetchHandlerRejectsLongInput(t *testing.T) {
	o, f := setup(t, knownPlaces())
	rr := post(NewFetchHandler(o, f), `{"start":"`+strings.Repeat("x", 300)+`","end":"Lyon"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatusHandler(t *testing.T) {
	o, f := setup(t, knownPlaces())
	_, err := o.Fetch(context.Background(), "Paris", "Lyon", f)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	NewStatusHandler(o).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/route/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.False(t, resp.Busy)
	assert.Equal(t, "succeeded", resp.Status.State.String())

	rr = httptest.NewRecorder()
	NewStatusHandler(o).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/route/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

type staticHistory struct {
	recs  []routefetch.Record
	limit int
}

func (s *staticHistory) Append(context.Context, routefetch.Record) error { return nil }

func (s *staticHistory) Recent(_ context.Context, limit int) ([]routefetch.Record, error) {
	s.limit = limit
	return s.recs, nil
}

func TestHistoryHandler(t *testing.T) {
	h := &staticHistory{recs: []routefetch.Record{{FetchID: "a", State: routefetch.StateSucceeded, DistanceKm: 12.5}}}
	get := func(handler http.Handler, target string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		return rr
	}

	rr := get(NewHistoryHandler(h), "/api/route/history?limit=5")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, h.limit)
	var recs []routefetch.Record
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].FetchID)

	assert.Equal(t, http.StatusBadRequest, get(NewHistoryHandler(h), "/api/route/history?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(NewHistoryHandler(h), "/api/route/history?limit=x").Code)
	assert.Equal(t, http.StatusNotFound, get(NewHistoryHandler(nil), "/api/route/history").Code)
}
