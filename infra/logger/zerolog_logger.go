package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the log level and output format.
type Config struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `json:"level" validate:"omitempty,oneof=debug info warn error"`
	// Format is "json" or "console". Defaults to json, or console when APP_ENV=dev.
	Format string `json:"format" validate:"omitempty,oneof=json console"`
	// File additionally writes JSON logs to a rotating file when Path is set.
	File FileConfig `json:"file"`
}

// FileConfig sets the rotation of the log file. Sizes are in megabytes.
type FileConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `json:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `json:"max_age_days" validate:"gte=0"`
	Compress   bool   `json:"compress"`
}

var (
	mu     sync.RWMutex
	cfg    Config
	output io.Writer = os.Stdout
	file   *lumberjack.Logger
)

// Configure sets the level, format and log file used by loggers created
// afterwards. A previously opened log file is closed.
func Configure(c Config) {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	cfg = c
	if c.File.Path != "" {
		file = &lumberjack.Logger{
			Filename:   c.File.Path,
			MaxSize:    c.File.MaxSizeMB,
			MaxBackups: c.File.MaxBackups,
			MaxAge:     c.File.MaxAgeDays,
			Compress:   c.File.Compress,
		}
	}
}

// CloseFile closes the log file, if any.
func CloseFile() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// SetOutput redirects loggers created afterwards to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger. All logs include the provided
// component field.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	c, out, f := cfg, output, file
	mu.RUnlock()

	format := strings.ToLower(c.Format)
	if format == "" && strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		format = "console"
	}
	w := out
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if f != nil {
		w = zerolog.MultiLevelWriter(w, f)
	}
	z := zerolog.New(w).Level(parseLevel(c.Level)).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
