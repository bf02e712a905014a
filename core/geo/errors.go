package geo

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a geocoding or routing failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindParseFailure
	KindUpstreamFormat
	KindUpstream
	KindNoRouteFound
	KindNetwork
	KindTimeout
	KindCanceled
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrParseFailure   = errors.New("parse failure")
	ErrUpstreamFormat = errors.New("malformed upstream response")
	ErrUpstream       = errors.New("upstream error")
	ErrNoRouteFound   = errors.New("no route found")
	ErrNetwork        = errors.New("network failure")
	ErrTimeout        = errors.New("timeout")
	ErrCanceled       = errors.New("canceled")
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindParseFailure:
		return "parse_failure"
	case KindUpstreamFormat:
		return "upstream_format"
	case KindUpstream:
		return "upstream"
	case KindNoRouteFound:
		return "no_route"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindParseFailure:
		return ErrParseFailure
	case KindUpstreamFormat:
		return ErrUpstreamFormat
	case KindUpstream:
		return ErrUpstream
	case KindNoRouteFound:
		return ErrNoRouteFound
	case KindNetwork:
		return ErrNetwork
	case KindTimeout:
		return ErrTimeout
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

// Error describes a failed geocoding or routing call.
type Error struct {
	Kind Kind
	// Op is the operation that failed, e.g. "geocode" or "route".
	Op string
	// Subject is the place name or coordinate pair involved.
	Subject string
	// Message is the service-provided message for upstream errors.
	Message string
	// RawLat and RawLon hold the unparsed coordinate text on parse failures.
	RawLat, RawLon string
	Err            error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %q: %s", e.Op, e.Subject, e.Kind.sentinel())
	switch {
	case e.Kind == KindParseFailure:
		msg += fmt.Sprintf(" (lat=%q lon=%q)", e.RawLat, e.RawLon)
	case e.Message != "":
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf classifies err. Context deadline and cancellation errors are mapped
// to KindTimeout and KindCanceled.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindUnknown
}

// Retryable reports whether a repeated user action may succeed without
// changing the inputs.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindUpstream, KindCanceled:
		return true
	default:
		return false
	}
}
