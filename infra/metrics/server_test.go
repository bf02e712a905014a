package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/evrange/core/metrics"
)

func TestPromHandlerExposesSinkMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := newTestPromSink(t, reg)
	require.NoError(t, sink.RecordFetch(coremetrics.FetchEvent{Outcome: coremetrics.OutcomeSuccess}))

	srv := httptest.NewServer(PromHandler(reg))
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `route_fetch_total{kind="none",outcome="success"} 1`)
}
