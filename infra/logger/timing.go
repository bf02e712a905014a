package logger

import "time"

// Time logs the duration of op when the returned function is deferred with
// the address of the caller's named error.
//
//	defer logger.Time(log, "osrm.Route")(&err)
func Time(l Logger, op string) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		fields := map[string]any{"op": op, "dur_ms": time.Since(start).Milliseconds()}
		if errp != nil && *errp != nil {
			fields["err"] = (*errp).Error()
		}
		l.Debugw("timing", fields)
	}
}
