package routefetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrange/core/model"
)

type mockHistory struct{ mock.Mock }

func (m *mockHistory) Append(ctx context.Context, rec Record) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockHistory) Recent(ctx context.Context, limit int) ([]Record, error) {
	args := m.Called(ctx, limit)
	recs, _ := args.Get(0).([]Record)
	return recs, args.Error(1)
}

func TestFetchAppendsHistory(t *testing.T) {
	h := &mockHistory{}
	h.On("Append", mock.Anything, mock.MatchedBy(func(r Record) bool {
		return r.Start == "Paris" && r.End == "Lyon" && r.State == StateSucceeded &&
			r.Kind == "" && r.DistanceKm == 465.3 && r.FetchID != ""
	})).Return(nil).Once()

	r := &fakeRouter{results: []model.RouteQueryResult{{DistanceMeters: 465312.4, DurationSeconds: 16230}}}
	o := NewOrchestrator(newGeocoder(), r, nil, nil, nil)
	o.SetHistory(h)

	_, err := o.Fetch(context.Background(), " Paris", "Lyon ", &distanceField{})
	require.NoError(t, err)
	h.AssertExpectations(t)
}

func TestFetchHistoryOutlivesCallerContext(t *testing.T) {
	h := &mockHistory{}
	h.On("Append",
		mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }),
		mock.MatchedBy(func(r Record) bool { return r.State == StateFailed && r.Kind == "canceled" }),
	).Return(errors.New("store closed")).Once()

	g := newGeocoder()
	g.block = make(chan struct{})
	o := NewOrchestrator(g, &fakeRouter{}, nil, nil, nil)
	o.SetHistory(h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := o.Fetch(ctx, "Paris", "Lyon", &distanceField{})
	require.Error(t, err)
	assert.Equal(t, "Geocoding Paris was canceled.", out.Message)
	h.AssertExpectations(t)
}

func TestFetchRejectedRunIsNotRecorded(t *testing.T) {
	h := &mockHistory{}
	g := newGeocoder()
	g.block = make(chan struct{})
	o := NewOrchestrator(g, &fakeRouter{results: []model.RouteQueryResult{{DistanceMeters: 1000}}}, nil, nil, nil)
	h.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	o.SetHistory(h)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.Fetch(context.Background(), "Paris", "Lyon", &distanceField{})
	}()
	require.Eventually(t, o.Busy, time.Second, time.Millisecond)
	_, err := o.Fetch(context.Background(), "Paris", "Lyon", &distanceField{})
	require.ErrorIs(t, err, ErrFetchInProgress)
	close(g.block)
	<-done
	h.AssertNumberOfCalls(t, "Append", 1)
}
