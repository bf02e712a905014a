// Package monitoring holds the process-wide error reporter. Route fetch
// failures caused by the network or by the upstream services are captured
// with module, stage and kind tags.
package monitoring

import "time"

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation. A nil monitor restores the
// no-op default.
func Init(m Monitor) {
	if m == nil {
		m = NopMonitor{}
	}
	current = m
}

// Tags builds the standard tag set for a captured failure.
func Tags(module, stage, kind string) map[string]string {
	t := map[string]string{"module": module}
	if stage != "" {
		t["stage"] = stage
	}
	if kind != "" {
		t["kind"] = kind
	}
	return t
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	current.CaptureException(err, tags)
}

// Recover captures panics in goroutines.
func Recover() { current.Recover() }

// Flush flushes buffered events.
func Flush(d time.Duration) { current.Flush(d) }
