package routefetch

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/evrange/core/geo"
	"github.com/kilianp07/evrange/core/model"
)

const (
	msgInitiating    = "Initiating route data fetch..."
	msgResolveStart  = "Finding start location coordinates..."
	msgResolveEnd    = "Finding end location coordinates..."
	msgMissingInputs = "Please enter both start and end locations."
	msgBusy          = "A route data fetch is already in progress."
)

func queryingMessage(from, to model.GeoCoordinate) string {
	return fmt.Sprintf("Getting route from %.4f,%.4f to %.4f,%.4f (%.1f km straight line)...",
		from.Lat, from.Lon, to.Lat, to.Lon, from.StraightLineKm(to))
}

func successMessage(km float64, d time.Duration) string {
	return fmt.Sprintf("Route found! Distance: %.1f km, Duration: %s. Please enter elevation manually.", km, FormatDuration(d))
}

// FormatDuration renders d as hh:mm:ss. Hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

// geocodeFailure describes a failed lookup of the named location.
func geocodeFailure(name string, err error) string {
	var ge *geo.Error
	errors.As(err, &ge)
	switch geo.KindOf(err) {
	case geo.KindNotFound:
		return fmt.Sprintf("No coordinates found for %s.", name)
	case geo.KindParseFailure:
		return fmt.Sprintf("Could not parse coordinates for %s. Received Lat: '%s', Lon: '%s'.", name, ge.RawLat, ge.RawLon)
	case geo.KindTimeout:
		return fmt.Sprintf("Timeout geocoding %s.", name)
	case geo.KindCanceled:
		return fmt.Sprintf("Geocoding %s was canceled.", name)
	case geo.KindNetwork:
		return fmt.Sprintf("Network error geocoding %s: %s", name, cause(err))
	case geo.KindUpstreamFormat:
		return fmt.Sprintf("Error parsing geocoding response for %s. Details: %s", name, cause(err))
	case geo.KindUpstream:
		return fmt.Sprintf("Geocoding service error for %s: %s", name, ge.Message)
	case geo.KindValidation:
		return "Location name cannot be empty for geocoding."
	default:
		return fmt.Sprintf("Unexpected error geocoding %s. Details: %v", name, err)
	}
}

// routeFailure describes a failed routing call.
func routeFailure(err error) string {
	var ge *geo.Error
	errors.As(err, &ge)
	switch geo.KindOf(err) {
	case geo.KindNoRouteFound:
		return "No route found between locations."
	case geo.KindUpstream:
		return "Route error: " + ge.Message
	case geo.KindTimeout:
		return "Request timed out (30 seconds for route, 15 for geocoding)."
	case geo.KindCanceled:
		return "Route request was canceled."
	case geo.KindNetwork:
		return "Network error: " + cause(err)
	case geo.KindUpstreamFormat:
		return "Error parsing API response: " + cause(err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// cause returns the innermost wrapped message of a geo error.
func cause(err error) string {
	var ge *geo.Error
	if errors.As(err, &ge) && ge.Err != nil {
		return ge.Err.Error()
	}
	return err.Error()
}
