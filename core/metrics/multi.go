package metrics

// MultiSink fans out events to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordEstimate forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordEstimate(ev EstimateEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordEstimate(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordFetch forwards fetch outcomes when supported by the sink.
func (m *MultiSink) RecordFetch(ev FetchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FetchRecorder); ok {
			if err := rec.RecordFetch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordUpstreamCall forwards call latencies when supported by the sink.
func (m *MultiSink) RecordUpstreamCall(ev UpstreamCallEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(UpstreamCallRecorder); ok {
			if err := rec.RecordUpstreamCall(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes the sinks that hold resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
