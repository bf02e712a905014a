package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrange/core/geo"
)

func TestGetHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "evrange-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	h := http.Header{}
	h.Set("User-Agent", "evrange-test/1.0")
	resp, err := Get(context.Background(), srv.Client(), srv.URL, h, "test", "x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestGetTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := Get(ctx, srv.Client(), srv.URL, nil, "test", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, geo.ErrTimeout), "got %v", err)
}

func TestGetCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Get(ctx, http.DefaultClient, "http://127.0.0.1:1/", nil, "test", "x")
	require.Error(t, err)
	assert.Equal(t, geo.KindCanceled, geo.KindOf(err))
}

func TestGetNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := Get(context.Background(), &http.Client{}, url, nil, "test", "x")
	require.Error(t, err)
	assert.Equal(t, geo.KindNetwork, geo.KindOf(err))
}
