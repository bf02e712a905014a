// Package infra contains technical adapters: the Nominatim and OSRM clients,
// the geocode cache, the fetch history store, metrics exporters, the MQTT
// status publisher and Sentry monitoring. These packages depend only on the
// interfaces defined in the core packages.
package infra
