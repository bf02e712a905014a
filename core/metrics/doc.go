// Package metrics defines the events emitted by range estimates and route
// fetches and the sinks recording them. Sinks like PromSink and InfluxSink
// live in infra/metrics and register themselves by type name; NewMetricsSink
// returns a MultiSink automatically when multiple sinks are configured.
// Optional recorder interfaces let a sink support only a subset of events.
package metrics
