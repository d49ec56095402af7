package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	wailsLogger "github.com/wailsapp/wails/v2/pkg/logger"
)

// Setup builds the application logger.
// level may be "debug", "info", "warn", or "error" (default "info").
// dev switches to a human-readable console writer.
func Setup(level string, dev bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if dev {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return New(out, level)
}

// New returns a logger writing to out at the given level
func New(out io.Writer, level string) zerolog.Logger {
	return zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("app", "scene-finder").
		Logger()
}

// ParseLevel maps a settings level name to a zerolog level
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WailsLevel maps a settings level name to the Wails runtime log level
func WailsLevel(level string) wailsLogger.LogLevel {
	switch ParseLevel(level) {
	case zerolog.TraceLevel:
		return wailsLogger.TRACE
	case zerolog.DebugLevel:
		return wailsLogger.DEBUG
	case zerolog.WarnLevel:
		return wailsLogger.WARNING
	case zerolog.ErrorLevel:
		return wailsLogger.ERROR
	default:
		return wailsLogger.INFO
	}
}

// WailsAdapter routes Wails framework and runtime.Log* messages into zerolog
type WailsAdapter struct {
	log zerolog.Logger
}

var _ wailsLogger.Logger = (*WailsAdapter)(nil)

// NewWailsAdapter wraps log for use as options.App.Logger
func NewWailsAdapter(log zerolog.Logger) *WailsAdapter {
	return &WailsAdapter{log: log.With().Str("component", "wails").Logger()}
}

func (w *WailsAdapter) Print(message string)   { w.log.Log().Msg(message) }
func (w *WailsAdapter) Trace(message string)   { w.log.Trace().Msg(message) }
func (w *WailsAdapter) Debug(message string)   { w.log.Debug().Msg(message) }
func (w *WailsAdapter) Info(message string)    { w.log.Info().Msg(message) }
func (w *WailsAdapter) Warning(message string) { w.log.Warn().Msg(message) }
func (w *WailsAdapter) Error(message string)   { w.log.Error().Msg(message) }

// Fatal logs without exiting; Wails decides how to shut down
func (w *WailsAdapter) Fatal(message string) { w.log.WithLevel(zerolog.FatalLevel).Msg(message) }
