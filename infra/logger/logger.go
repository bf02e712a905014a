package logger

import corelogger "github.com/kilianp07/evrange/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component using the settings passed to
// Configure. Without configuration the APP_ENV variable selects the format.
func New(component string) Logger {
	return NewZerologLogger(component)
}
