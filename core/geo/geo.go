// Package geo defines the ports used to resolve place names and query driving
// routes, together with the error kinds shared by their implementations.
package geo

import (
	"context"

	"github.com/kilianp07/evrange/core/model"
)

// Geocoder resolves a free-text place name to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (model.GeoCoordinate, error)
}

// Router queries the fastest driving route between two coordinates.
type Router interface {
	Route(ctx context.Context, from, to model.GeoCoordinate) (model.RouteQueryResult, error)
}
