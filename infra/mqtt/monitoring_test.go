package mqtt

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kilianp07/evrange/core/monitoring"
	"github.com/kilianp07/evrange/core/routefetch"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestPublishErrorCaptured(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	useMock(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(nil)

	pub, err := NewStatusPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)
	err = pub.Publish(routefetch.Status{FetchID: "f1", State: routefetch.StateFailed})
	require.Error(t, err)
	assert.Len(t, mc.published, 2)
	assert.Equal(t, fail, mon.err)
	assert.Equal(t, "mqtt", mon.tags["module"])
	assert.Equal(t, "f1", mon.tags["fetch_id"])
}
