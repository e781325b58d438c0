// Package report delivers translated errors to a diagnostics collaborator.
//
// Boundaries hand every TranslatedError they produce to a Sink. The boundary
// performs no formatting or I/O itself; what happens to the report (structured
// logging, metrics, discarding) is decided by the embedding application.
package report

import (
	"context"
	"log/slog"

	"github.com/jmgilman/go/boundary/errors"
)

// Sink receives translated errors from a boundary.
// Implementations must be safe for concurrent use and must not block for long.
type Sink interface {
	Report(ctx context.Context, err errors.TranslatedError)
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc func(ctx context.Context, err errors.TranslatedError)

// Report calls f(ctx, err).
func (f SinkFunc) Report(ctx context.Context, err errors.TranslatedError) {
	f(ctx, err)
}

// Discard is a Sink that drops every report.
var Discard Sink = SinkFunc(func(context.Context, errors.TranslatedError) {})

type multiSink []Sink

func (m multiSink) Report(ctx context.Context, err errors.TranslatedError) {
	for _, s := range m {
		s.Report(ctx, err)
	}
}

// Multi returns a Sink that forwards each report to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Or returns s, or Discard if s is nil.
func Or(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// LogSink writes translated errors to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a Sink that logs through logger.
// A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Report logs err with its kind, operation, classification, cause, and context
// as attributes. The level is derived from the kind: failures of unknown or
// internal origin are errors, retryable failures are warnings, and the rest
// (expected caller-facing outcomes such as NOT_FOUND) are informational.
func (s *LogSink) Report(ctx context.Context, err errors.TranslatedError) {
	if err == nil {
		return
	}
	s.logger.LogAttrs(ctx, Level(err), err.Message(), Attrs(err)...)
}

// Level returns the log level for err.
func Level(err errors.TranslatedError) slog.Level {
	switch {
	case err.Kind() == errors.KindUnknown, err.Kind() == errors.KindInternal:
		return slog.LevelError
	case err.Classification().IsRetryable():
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Attrs returns the structured attributes describing err.
func Attrs(err errors.TranslatedError) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("kind", string(err.Kind())),
		slog.String("classification", string(err.Classification())),
	}
	if op := err.Operation(); op != "" {
		attrs = append(attrs, slog.String("operation", op))
	}
	if cause := err.Unwrap(); cause != nil {
		attrs = append(attrs, slog.String("cause", cause.Error()))
	}
	if ctx := err.Context(); len(ctx) > 0 {
		fields := make([]any, 0, len(ctx)*2)
		for k, v := range ctx {
			fields = append(fields, k, v)
		}
		attrs = append(attrs, slog.Group("context", fields...))
	}
	return attrs
}
