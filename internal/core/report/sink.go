package report

import (
	"context"
	"log/slog"
)

// Sink receives reported records. Implementations must be safe for
// concurrent use.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec Record) error
}

// ConsoleSink writes records to a slog logger.
type ConsoleSink struct {
	logger *slog.Logger
}

// NewConsoleSink creates a console sink. A nil logger uses slog.Default().
func NewConsoleSink(logger *slog.Logger) *ConsoleSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleSink{logger: logger}
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Write(ctx context.Context, rec Record) error {
	level := slog.LevelError
	if rec.IsOperational {
		level = slog.LevelWarn
	}

	attrs := []any{
		"id", rec.ID,
		"timestamp", rec.Timestamp,
		"name", rec.Name,
		"code", rec.Code,
		"status_code", rec.StatusCode,
		"operational", rec.IsOperational,
	}
	if len(rec.Context) > 0 {
		attrs = append(attrs, "context", rec.Context)
	}
	if rec.Stack != "" && level == slog.LevelError {
		attrs = append(attrs, "stack", rec.Stack)
	}

	s.logger.Log(ctx, level, rec.Message, attrs...)
	return nil
}
