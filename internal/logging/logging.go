// Package logging builds the application logger and adapts it to chi's
// request logging middleware.
package logging

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
)

// New creates a [log.Logger] writing to w with timestamps enabled.
// The writer defaults to [os.Stderr]. Unknown levels fall back to info.
func New(w io.Writer, level, format string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := log.Options{ReportTimestamp: true, TimeFormat: time.DateTime}
	switch format {
	case "json":
		opts.Formatter = log.JSONFormatter
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
	default:
		opts.Formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(w, opts)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// RequestLogger returns chi middleware that logs one line per request.
func RequestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&requestFormatter{logger: logger})
}

// requestFormatter implements [middleware.LogFormatter].
type requestFormatter struct {
	logger *log.Logger
}

func (f *requestFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestEntry{
		logger: f.logger.With(
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"remote", r.RemoteAddr,
		),
	}
}

type requestEntry struct {
	logger *log.Logger
}

func (e *requestEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	kv := []interface{}{"status", status, "bytes", bytes, "duration", elapsed.Round(time.Microsecond)}
	switch {
	case status >= 500:
		e.logger.Error("request", kv...)
	case status >= 400:
		e.logger.Warn("request", kv...)
	default:
		e.logger.Info("request", kv...)
	}
}

func (e *requestEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("panic", "error", fmt.Sprint(v), "stack", string(stack))
}
