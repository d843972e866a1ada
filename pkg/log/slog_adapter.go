package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see the exchange in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Errors are logged at Error level,
// everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("run_id", event.RunID),
		slog.Uint64("settle", event.Settle),
		slog.String("category", event.Category.String()),
	}
	if event.Round != 0 {
		attrs = append(attrs, slog.Int("round", event.Round))
	}
	if event.Device != "" {
		attrs = append(attrs, slog.String("device", event.Device))
	}

	level := slog.LevelDebug
	switch {
	case event.SettleInfo != nil:
		attrs = append(attrs,
			slog.Int("rounds", event.SettleInfo.Rounds),
			slog.Int("pushes", event.SettleInfo.Pushes),
			slog.Int("invocations", event.SettleInfo.Invocations),
			slog.Duration("duration", event.SettleInfo.Duration),
		)
		if event.SettleInfo.Initial {
			attrs = append(attrs, slog.Bool("initial", true))
		}
	case event.Push != nil:
		attrs = append(attrs,
			slog.String("kind", event.Push.Kind.String()),
			slog.String("source", event.Push.Source),
			slog.String("target", event.Push.Target),
			slog.Int("count", event.Push.Count),
			slog.Bool("changed", event.Push.Changed),
		)
		if event.Push.Value != nil {
			attrs = append(attrs, slog.Any("value", event.Push.Value))
		}
	case event.Invoke != nil:
		attrs = append(attrs,
			slog.String("class", event.Invoke.Class),
			slog.Int("targets", event.Invoke.Targets),
		)
	case event.Error != nil:
		level = slog.LevelError
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if len(event.Error.Armed) > 0 {
			attrs = append(attrs, slog.Any("armed", event.Error.Armed))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "exchange", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
